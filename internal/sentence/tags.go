package sentence

// NTags returns the number of tag slots per character.
func (s *Sentence) NTags() int { return s.nTags }

// Tags returns the flattened tag table of size Len()*NTags(). The row for a
// token is its end offset minus one. An empty string means no tag.
func (s *Sentence) Tags() []string { return s.tags }

// ResetTags clears the tag table and resizes it to n slots per character.
func (s *Sentence) ResetTags(n int) {
	if n < 0 {
		n = 0
	}
	s.nTags = n
	s.tags = grow(s.tags, len(s.chars)*n)
	clear(s.tags)
}

// SetTag stores tag at (row, slot).
func (s *Sentence) SetTag(row, slot int, tag string) {
	s.tags[row*s.nTags+slot] = tag
}

// Tag returns the tag at (row, slot).
func (s *Sentence) Tag(row, slot int) string {
	return s.tags[row*s.nTags+slot]
}

// CopyTags replaces s's tag table with src's.
func (s *Sentence) CopyTags(src *Sentence) error {
	if len(s.chars) != len(src.chars) {
		return ErrLengthMismatch
	}
	s.ResetTags(src.nTags)
	copy(s.tags, src.tags)
	return nil
}
