package sentence

// AppendTokenized appends the tokenized rendering of s to dst: tokens are
// separated by a single space and, when the sentence has tag slots, each
// token is followed by "/tag" for every slot in order (an absent tag renders
// as an empty segment). Spaces, slashes and backslashes inside surfaces and
// tags are escaped with a backslash.
func (s *Sentence) AppendTokenized(dst []byte) []byte {
	first := true
	for sp := range s.Tokens() {
		if !first {
			dst = append(dst, ' ')
		}
		first = false

		dst = AppendEscaped(dst, s.SurfaceBytes(sp.Start, sp.End))
		for slot := range s.nTags {
			dst = append(dst, '/')
			dst = AppendEscapedString(dst, s.Tag(sp.End-1, slot))
		}
	}
	return dst
}

// AppendEscaped appends b to dst, escaping ' ', '/' and '\'.
func AppendEscaped(dst, b []byte) []byte {
	for _, c := range b {
		if c == ' ' || c == '/' || c == '\\' {
			dst = append(dst, '\\')
		}
		dst = append(dst, c)
	}
	return dst
}

// AppendEscapedString is AppendEscaped for a string.
func AppendEscapedString(dst []byte, str string) []byte {
	for i := 0; i < len(str); i++ {
		c := str[i]
		if c == ' ' || c == '/' || c == '\\' {
			dst = append(dst, '\\')
		}
		dst = append(dst, c)
	}
	return dst
}
