package text

import (
	"testing"
	"unicode/utf8"
)

func TestNormalizer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"digits", "120円", "１２０円"},
		{"ascii letters", "Go言語", "Ｇｏ言語"},
		{"symbols", "a/b", "ａ／ｂ"},
		{"space untouched", "a b", "ａ ｂ"},
		{"half-width katakana", "ｶﾀｶﾅ", "カタカナ"},
		{"already full-width", "１２０円", "１２０円"},
		{"kanji untouched", "社長", "社長"},
		{"empty", "", ""},
	}

	var n Normalizer
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.String(tt.input)
			if got != tt.want {
				t.Errorf("String(%q) = %q; want %q", tt.input, got, tt.want)
			}

			if utf8.RuneCountInString(got) != utf8.RuneCountInString(tt.input) {
				t.Errorf("String(%q) changed rune count: %d -> %d",
					tt.input, utf8.RuneCountInString(tt.input), utf8.RuneCountInString(got))
			}
		})
	}
}

func TestNormalizer_AppendReusesBuffer(t *testing.T) {
	var n Normalizer
	buf := make([]byte, 0, 64)

	buf = n.Append(buf[:0], []byte("12"))
	first := &buf[:1][0]

	buf = n.Append(buf[:0], []byte("34"))
	if &buf[:1][0] != first {
		t.Error("Append reallocated a buffer with sufficient capacity")
	}

	if string(buf) != "３４" {
		t.Errorf("Append() = %q; want %q", buf, "３４")
	}
}

func TestNormalizer_InvalidBytesPassThrough(t *testing.T) {
	var n Normalizer
	got := n.Append(nil, []byte("1\xff2"))
	if string(got) != "１\xff２" {
		t.Errorf("Append() = %q; want %q", got, "１\xff２")
	}
}
