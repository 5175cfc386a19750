package sentence

import "testing"

func TestAppendTokenized(t *testing.T) {
	var s Sentence
	if err := s.Update("社長は猫"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	setBoundaries(t, &s, "-||")

	if got := string(s.AppendTokenized(nil)); got != "社長 は 猫" {
		t.Errorf("AppendTokenized() = %q; want %q", got, "社長 は 猫")
	}

	s.ResetTags(2)
	s.SetTag(1, 0, "名詞")
	s.SetTag(1, 1, "シャチョー")
	s.SetTag(2, 0, "助詞")

	want := "社長/名詞/シャチョー は/助詞/ 猫//"
	if got := string(s.AppendTokenized([]byte("prefix:"))); got != "prefix:"+want {
		t.Errorf("AppendTokenized() = %q; want %q", got, "prefix:"+want)
	}
}

func TestAppendTokenized_Escapes(t *testing.T) {
	var s Sentence
	if err := s.Update(`a b/c\d`); err != nil {
		t.Fatalf("Update: %v", err)
	}
	setBoundaries(t, &s, "------")
	s.ResetTags(1)
	s.SetTag(6, 0, "x/y")

	want := `a\ b\/c\\d/x\/y`
	if got := string(s.AppendTokenized(nil)); got != want {
		t.Errorf("AppendTokenized() = %q; want %q", got, want)
	}
}

func TestAppendTokenized_Empty(t *testing.T) {
	var s Sentence
	if got := s.AppendTokenized(nil); len(got) != 0 {
		t.Errorf("AppendTokenized() on empty sentence = %q; want empty", got)
	}
}

func TestAppendEscaped(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"猫", "猫"},
		{" ", `\ `},
		{"/", `\/`},
		{`\`, `\\`},
		{"a/b c", `a\/b\ c`},
	}

	for _, tt := range tests {
		if got := string(AppendEscaped(nil, []byte(tt.in))); got != tt.want {
			t.Errorf("AppendEscaped(%q) = %q; want %q", tt.in, got, tt.want)
		}

		if got := string(AppendEscapedString(nil, tt.in)); got != tt.want {
			t.Errorf("AppendEscapedString(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
