// Package model defines the segmentation model handed to the prediction
// engine, together with its compressed wire container, the legacy line
// dictionary reader, and the YAML dictionary source used by `wakati model pack`.
package model

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrCorrupt is returned when model bytes cannot be decoded.
	ErrCorrupt = errors.New("model data is corrupt")
	// ErrEmptyModel is returned when a model or dictionary carries no bytes at all.
	ErrEmptyModel = errors.New("model data must not be empty")
)

// MaxTagSlots bounds the number of tags a model may attach to each token.
const MaxTagSlots = 64

// Word is one dictionary entry. Tags are indexed by slot; a missing trailing
// slot or an empty string means the slot carries no tag.
type Word struct {
	Surface string   `yaml:"surface"`
	Tags    []string `yaml:"tags,omitempty"`
}

// Model is the decoded, engine-independent representation of a model file.
type Model struct {
	TagSlots int    `yaml:"tag_slots"`
	Words    []Word `yaml:"words"`
}

// Validate checks the structural constraints the engine relies on.
func (m *Model) Validate() error {
	if m == nil {
		return errors.New("model is nil")
	}
	if m.TagSlots < 0 || m.TagSlots > MaxTagSlots {
		return fmt.Errorf("tag slots must be in [0, %d], got %d", MaxTagSlots, m.TagSlots)
	}

	for i, w := range m.Words {
		if w.Surface == "" {
			return fmt.Errorf("word %d: surface must not be empty", i)
		}
		if !utf8.ValidString(w.Surface) {
			return fmt.Errorf("word %d: surface is not valid UTF-8", i)
		}
		if len(w.Tags) > m.TagSlots {
			return fmt.Errorf("word %d (%q): %d tags exceed %d tag slots", i, w.Surface, len(w.Tags), m.TagSlots)
		}
		for j, tag := range w.Tags {
			if !utf8.ValidString(tag) {
				return fmt.Errorf("word %d (%q): tag %d is not valid UTF-8", i, w.Surface, j)
			}
		}
	}

	return nil
}

// WithoutTags returns a copy of m that carries no tag model.
func (m *Model) WithoutTags() *Model {
	out := &Model{Words: make([]Word, len(m.Words))}
	for i, w := range m.Words {
		out.Words[i] = Word{Surface: w.Surface}
	}

	return out
}
