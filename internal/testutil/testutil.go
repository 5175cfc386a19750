// Package testutil provides shared fixtures and skip helpers for tests.
//
// The fixture dictionary is small but covers the cases package tests care
// about: multi-character words, full-width digits, a word with a missing
// trailing tag, and kana and kanji runs that are not in the dictionary.
//
// Typical usage:
//
//	func TestMyFeature(t *testing.T) {
//	    s, err := tokenizer.New(testutil.ModelBytes(t), tokenizer.WithPredictTags(true))
//	    ...
//	}
package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/example/go-wakati/internal/model"
)

// Sentence is the input most tests tokenize.
const Sentence = "まぁ社長は火星猫だ"

// Model returns a fresh copy of the fixture model with two tag slots: a part
// of speech and a reading.
func Model() *model.Model {
	return &model.Model{
		TagSlots: 2,
		Words: []model.Word{
			{Surface: "まぁ", Tags: []string{"名詞", "マー"}},
			{Surface: "社長", Tags: []string{"名詞", "シャチョー"}},
			{Surface: "は", Tags: []string{"助詞", "ワ"}},
			{Surface: "火星", Tags: []string{"名詞", "カセー"}},
			{Surface: "猫", Tags: []string{"名詞", "ネコ"}},
			{Surface: "だ", Tags: []string{"助動詞", "ダ"}},
			{Surface: "２０", Tags: []string{"名詞", "ニジュー"}},
			{Surface: "円", Tags: []string{"名詞", "エン"}},
			{Surface: "。", Tags: []string{"補助記号"}},
			{Surface: "です", Tags: []string{"助動詞", "デス"}},
		},
	}
}

// ModelBytes returns the fixture model in the compressed container format.
func ModelBytes(tb testing.TB) []byte {
	tb.Helper()

	data, err := model.Encode(Model())
	if err != nil {
		tb.Fatalf("encode fixture model: %v", err)
	}

	return data
}

// LegacyBytes returns the fixture dictionary in the legacy line format.
func LegacyBytes() []byte {
	var b strings.Builder
	b.WriteString("# fixture dictionary\n")
	for _, w := range Model().Words {
		b.WriteString(w.Surface)
		if len(w.Tags) > 0 {
			b.WriteByte('\t')
			b.WriteString(strings.Join(w.Tags, ","))
		}
		b.WriteByte('\n')
	}

	return []byte(b.String())
}

// WriteModel writes the compressed fixture model to path.
func WriteModel(tb testing.TB, path string) {
	tb.Helper()

	if err := os.WriteFile(path, ModelBytes(tb), 0o600); err != nil {
		tb.Fatalf("write fixture model: %v", err)
	}
}

// RequireFile skips the test if path does not exist. It is used by tests that
// run against a real model named by WAKATI_PATHS_MODEL_PATH.
func RequireFile(tb testing.TB, path string) {
	tb.Helper()

	if path == "" {
		tb.Skip("no file configured")
	}

	// #nosec G703 -- tests intentionally accept explicit env-provided local paths.
	if _, err := os.Stat(path); err != nil {
		tb.Skipf("file not available at %q: %v", path, err)
	}
}
