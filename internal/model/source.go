package model

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// LoadSource reads a YAML dictionary source:
//
//	tag_slots: 2
//	words:
//	  - surface: 社長
//	    tags: [名詞, シャチョー]
//
// The result is validated before it is returned.
func LoadSource(r io.Reader) (*Model, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Model
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyModel
		}
		return nil, fmt.Errorf("decode dictionary source: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("dictionary source: %w", err)
	}

	return &m, nil
}
