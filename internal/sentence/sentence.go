// Package sentence holds the reusable per-call scratch view of one input
// text: its characters, the boundary array between them, and the flattened
// tag table. A Sentence owns all of its storage, so reusing one across calls
// is an in-place reset rather than a reallocation.
package sentence

import (
	"errors"
	"iter"
	"unicode/utf8"
)

var (
	// ErrEmptyText is returned by Update for an empty input.
	ErrEmptyText = errors.New("text is empty")
	// ErrInvalidUTF8 is returned by Update when the input is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("text is not valid UTF-8")
	// ErrLengthMismatch is returned when copying between sentences whose
	// character counts differ.
	ErrLengthMismatch = errors.New("sentence lengths differ")
)

// Boundary marks the gap between two adjacent characters.
type Boundary uint8

const (
	Unknown Boundary = iota
	NotWordBoundary
	WordBoundary
)

// Span is a token's character range, start inclusive and end exclusive.
type Span struct {
	Start int
	End   int
}

// Sentence is a mutable view over one text. The zero value is an empty
// sentence ready for Update.
type Sentence struct {
	text       []byte
	chars      []rune
	offsets    []int // byte offset of each char, plus len(text)
	types      []CharType
	boundaries []Boundary
	tags       []string
	nTags      int
}

// Update replaces the held text and resets boundaries and tags. On error the
// sentence is left empty.
func (s *Sentence) Update(text string) error {
	s.reset()
	if text == "" {
		return ErrEmptyText
	}
	if !utf8.ValidString(text) {
		return ErrInvalidUTF8
	}

	s.text = append(s.text, text...)
	s.index()
	return nil
}

// UpdateBytes is Update for a byte slice. The bytes are copied.
func (s *Sentence) UpdateBytes(text []byte) error {
	s.reset()
	if len(text) == 0 {
		return ErrEmptyText
	}
	if !utf8.Valid(text) {
		return ErrInvalidUTF8
	}

	s.text = append(s.text, text...)
	s.index()
	return nil
}

func (s *Sentence) reset() {
	s.text = s.text[:0]
	s.chars = s.chars[:0]
	s.offsets = s.offsets[:0]
	s.types = s.types[:0]
	s.boundaries = s.boundaries[:0]
	s.tags = s.tags[:0]
	s.nTags = 0
}

func (s *Sentence) index() {
	for i := 0; i < len(s.text); {
		r, size := utf8.DecodeRune(s.text[i:])
		s.chars = append(s.chars, r)
		s.offsets = append(s.offsets, i)
		s.types = append(s.types, CharTypeOf(r))
		i += size
	}
	s.offsets = append(s.offsets, len(s.text))

	n := len(s.chars) - 1
	s.boundaries = grow(s.boundaries, n)
	clear(s.boundaries)
}

// Len returns the number of characters.
func (s *Sentence) Len() int { return len(s.chars) }

// Bytes returns the held text. The slice is only valid until the next Update.
func (s *Sentence) Bytes() []byte { return s.text }

// Chars returns the characters of the held text.
func (s *Sentence) Chars() []rune { return s.chars }

// CharTypes returns the class of each character.
func (s *Sentence) CharTypes() []CharType { return s.types }

// Boundaries returns the boundary array, one entry per gap between adjacent
// characters. Callers write to it in place.
func (s *Sentence) Boundaries() []Boundary { return s.boundaries }

// SurfaceBytes returns the bytes of the characters in [start, end). The slice
// aliases the sentence and is only valid until the next Update.
func (s *Sentence) SurfaceBytes(start, end int) []byte {
	return s.text[s.offsets[start]:s.offsets[end]]
}

// CopyBoundaries overwrites s's boundaries with src's.
func (s *Sentence) CopyBoundaries(src *Sentence) error {
	if len(s.boundaries) != len(src.boundaries) {
		return ErrLengthMismatch
	}
	copy(s.boundaries, src.boundaries)
	return nil
}

// Tokens iterates over the token spans implied by the boundary array. Only
// WordBoundary splits; Unknown is treated as no boundary.
func (s *Sentence) Tokens() iter.Seq[Span] {
	return func(yield func(Span) bool) {
		if len(s.chars) == 0 {
			return
		}
		start := 0
		for i, b := range s.boundaries {
			if b != WordBoundary {
				continue
			}
			if !yield(Span{Start: start, End: i + 1}) {
				return
			}
			start = i + 1
		}
		yield(Span{Start: start, End: len(s.chars)})
	}
}

// NumTokens returns the number of tokens Tokens yields.
func (s *Sentence) NumTokens() int {
	if len(s.chars) == 0 {
		return 0
	}
	n := 1
	for _, b := range s.boundaries {
		if b == WordBoundary {
			n++
		}
	}
	return n
}

func grow[T any](buf []T, n int) []T {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) < n {
		return make([]T, n)
	}
	return buf[:n]
}
