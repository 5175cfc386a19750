package model

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// maxLegacyLine bounds a single dictionary line.
const maxLegacyLine = 1 << 20

// ReadLegacy reads a legacy line dictionary: one surface per line, optionally
// followed by a tab and fields this format ignores. Lines starting with '#'
// and blank lines are skipped. The format carries no tag model, so the
// result always has zero tag slots.
func ReadLegacy(r io.Reader) (*Model, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLegacyLine)

	m := &Model{}
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}

		surface, _, _ := strings.Cut(text, "\t")
		surface = strings.TrimSpace(surface)
		if surface == "" {
			return nil, fmt.Errorf("legacy dictionary line %d: empty surface", line)
		}
		if !utf8.ValidString(surface) {
			return nil, fmt.Errorf("legacy dictionary line %d: surface is not valid UTF-8", line)
		}

		m.Words = append(m.Words, Word{Surface: surface})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read legacy dictionary: %w", err)
	}

	return m, nil
}

// DecodeLegacy is ReadLegacy over an in-memory blob.
func DecodeLegacy(data []byte) (*Model, error) {
	if len(data) == 0 {
		return nil, ErrEmptyModel
	}

	return ReadLegacy(bytes.NewReader(data))
}
