package text

import "strings"

// SplitSentences splits text after sentence-ending punctuation (。．！？.!?
// and newlines), keeping the terminator and any closing brackets or quotes
// that follow it attached to its sentence. The result concatenates back to
// text exactly. Empty input yields no sentences.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	inEnd := false

	for i, r := range text {
		switch {
		case isTerminator(r):
			inEnd = true
		case inEnd && isCloser(r):
		case inEnd:
			sentences = append(sentences, text[start:i])
			start = i
			inEnd = false
		}
	}

	if start < len(text) {
		sentences = append(sentences, text[start:])
	}

	return sentences
}

// ChunkBySentence splits text into chunks at sentence boundaries, grouping
// consecutive sentences while staying within maxBytes per chunk. If maxBytes
// is 0, no splitting is performed. Sentences that individually exceed
// maxBytes are kept intact as a single chunk. The chunks concatenate back to
// text exactly.
func ChunkBySentence(text string, maxBytes int) []string {
	if maxBytes <= 0 || len(text) <= maxBytes {
		return []string{text}
	}

	sentences := SplitSentences(text)
	if len(sentences) <= 1 {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	for _, s := range sentences {
		if current.Len() > 0 && current.Len()+len(s) > maxBytes {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(s)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

func isTerminator(r rune) bool {
	switch r {
	case '。', '．', '！', '？', '.', '!', '?', '\n':
		return true
	}
	return false
}

func isCloser(r rune) bool {
	switch r {
	case '」', '』', '）', '】', '〕', ')', '"', '\'', '’', '”', '\r':
		return true
	}
	return isTerminator(r)
}
