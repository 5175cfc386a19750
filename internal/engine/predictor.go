// Package engine is the reference boundary predictor behind a tokenizer
// session. It segments by dictionary longest match over a rune trie and
// groups uncovered characters into runs of one character type. A Predictor
// is immutable after construction and safe for concurrent use.
package engine

import (
	"errors"
	"fmt"
	"iter"

	"github.com/example/go-wakati/internal/model"
	"github.com/example/go-wakati/internal/sentence"
)

// ErrNilModel is returned by NewPredictor when no model is supplied.
var ErrNilModel = errors.New("engine: model is nil")

type node struct {
	children map[rune]*node
	word     int // index into Predictor.words, -1 when not terminal
}

func newNode() *node {
	return &node{children: make(map[rune]*node), word: -1}
}

// Predictor predicts word boundaries and fills dictionary tags.
type Predictor struct {
	root        *node
	words       []model.Word
	tagSlots    int
	predictTags bool
}

// NewPredictor builds a predictor from m. When predictTags is false FillTags
// leaves every sentence without tag slots.
func NewPredictor(m *model.Model, predictTags bool) (*Predictor, error) {
	if m == nil {
		return nil, ErrNilModel
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	p := &Predictor{
		root:        newNode(),
		words:       m.Words,
		tagSlots:    m.TagSlots,
		predictTags: predictTags,
	}
	for i, w := range m.Words {
		p.insert(w.Surface, i)
	}

	return p, nil
}

// Later entries for the same surface replace earlier ones.
func (p *Predictor) insert(surface string, index int) {
	n := p.root
	for _, r := range surface {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
		}
		n = child
	}
	n.word = index
}

// longestMatch returns the length in characters of the longest dictionary
// word that is a prefix of chars, or 0.
func (p *Predictor) longestMatch(chars []rune) int {
	best := 0
	n := p.root
	for i, r := range chars {
		child, ok := n.children[r]
		if !ok {
			break
		}
		if child.word >= 0 {
			best = i + 1
		}
		n = child
	}
	return best
}

func (p *Predictor) lookup(chars []rune) (model.Word, bool) {
	n := p.root
	for _, r := range chars {
		child, ok := n.children[r]
		if !ok {
			return model.Word{}, false
		}
		n = child
	}
	if n.word < 0 {
		return model.Word{}, false
	}
	return p.words[n.word], true
}

// Predict writes every boundary of s.
func (p *Predictor) Predict(s *sentence.Sentence) {
	chars := s.Chars()
	types := s.CharTypes()
	b := s.Boundaries()
	for i := range b {
		b[i] = sentence.NotWordBoundary
	}

	pos := 0
	for pos < len(chars) {
		n := p.longestMatch(chars[pos:])
		if n == 0 {
			n = 1
			if types[pos] != sentence.Other {
				for pos+n < len(chars) && types[pos+n] == types[pos] && p.longestMatch(chars[pos+n:]) == 0 {
					n++
				}
			}
		}
		pos += n
		if pos < len(chars) {
			b[pos-1] = sentence.WordBoundary
		}
	}
}

// FillTags resizes the tag table of s and stores the dictionary tags of each
// token at the token's last character. Tokens outside the dictionary get no
// tags.
func (p *Predictor) FillTags(s *sentence.Sentence) {
	if !p.predictTags {
		s.ResetTags(0)
		return
	}

	s.ResetTags(p.tagSlots)
	if p.tagSlots == 0 {
		return
	}

	chars := s.Chars()
	for sp := range s.Tokens() {
		w, ok := p.lookup(chars[sp.Start:sp.End])
		if !ok {
			continue
		}
		for slot, tag := range w.Tags {
			s.SetTag(sp.End-1, slot, tag)
		}
	}
}

// TagSlots returns the number of tag slots FillTags produces.
func (p *Predictor) TagSlots() int {
	if !p.predictTags {
		return 0
	}
	return p.tagSlots
}

// PredictsTags reports whether FillTags assigns tags.
func (p *Predictor) PredictsTags() bool { return p.predictTags }

// Dictionary yields every dictionary surface. A surface listed more than once
// in the model is yielded more than once.
func (p *Predictor) Dictionary() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, w := range p.words {
			if !yield(w.Surface) {
				return
			}
		}
	}
}
