// Package text implements the normalization pipeline around the predictor:
// the character-width normalizer applied to the text the engine sees, and
// the boundary-constraint filters applied to the predicted boundaries.
package text

import (
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Normalizer maps half-width and narrow characters to their full-width
// forms (ASCII letters, digits and symbols, half-width katakana). The mapping
// is one rune to one rune, so character offsets are preserved.
type Normalizer struct{}

// Append appends the normalized form of src to dst and returns the result.
// Invalid UTF-8 sequences are copied through unchanged.
func (Normalizer) Append(dst, src []byte) []byte {
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRune(src[i:])
		if r == utf8.RuneError && size <= 1 {
			dst = append(dst, src[i:i+size]...)
			i += size
			continue
		}
		dst = utf8.AppendRune(dst, wide(r))
		i += size
	}
	return dst
}

// String returns the normalized form of s.
func (n Normalizer) String(s string) string {
	return string(n.Append(make([]byte, 0, len(s)), []byte(s)))
}

func wide(r rune) rune {
	if r < 0x21 {
		return r
	}
	if w := width.LookupRune(r).Wide(); w != 0 {
		return w
	}
	return r
}
