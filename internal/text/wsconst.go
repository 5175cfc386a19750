package text

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/example/go-wakati/internal/sentence"
)

// ErrInvalidWsConst matches every *WsConstError.
var ErrInvalidWsConst = errors.New("invalid wsconst")

// WsConstError reports a character outside the wsconst alphabet.
type WsConstError struct {
	Char rune
}

func (e *WsConstError) Error() string {
	return fmt.Sprintf("invalid wsconst: %q (want one of D R H T K O G)", e.Char)
}

func (e *WsConstError) Is(target error) bool { return target == ErrInvalidWsConst }

// Filter rewrites the boundary array of a sentence after prediction.
type Filter interface {
	Apply(s *sentence.Sentence)
	Code() rune
}

// CharTypeConstraint forbids boundaries inside runs of one character type.
type CharTypeConstraint struct {
	Type sentence.CharType
}

func (f CharTypeConstraint) Apply(s *sentence.Sentence) {
	types := s.CharTypes()
	b := s.Boundaries()
	for i := range b {
		if types[i] == f.Type && types[i+1] == f.Type {
			b[i] = sentence.NotWordBoundary
		}
	}
}

func (f CharTypeConstraint) Code() rune {
	for c, t := range wsconstTypes {
		if t == f.Type {
			return c
		}
	}
	return 0
}

// GraphemeConcat forbids boundaries inside extended grapheme clusters.
type GraphemeConcat struct{}

func (GraphemeConcat) Apply(s *sentence.Sentence) {
	b := s.Boundaries()
	rest := s.Bytes()
	state := -1
	pos := 0
	for len(rest) > 0 {
		var cluster []byte
		cluster, rest, _, state = uniseg.FirstGraphemeCluster(rest, state)
		n := utf8.RuneCount(cluster)
		for i := pos; i < pos+n-1; i++ {
			b[i] = sentence.NotWordBoundary
		}
		pos += n
	}
}

func (GraphemeConcat) Code() rune { return 'G' }

var wsconstTypes = map[rune]sentence.CharType{
	'D': sentence.Digit,
	'R': sentence.Roman,
	'H': sentence.Hiragana,
	'T': sentence.Katakana,
	'K': sentence.Kanji,
	'O': sentence.Other,
}

// ParseWsConst turns a wsconst string into filters, preserving order.
func ParseWsConst(spec string) ([]Filter, error) {
	filters := make([]Filter, 0, len(spec))
	for _, c := range spec {
		if c == 'G' {
			filters = append(filters, GraphemeConcat{})
			continue
		}
		t, ok := wsconstTypes[c]
		if !ok {
			return nil, &WsConstError{Char: c}
		}
		filters = append(filters, CharTypeConstraint{Type: t})
	}
	return filters, nil
}
