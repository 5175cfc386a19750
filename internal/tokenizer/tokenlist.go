package tokenizer

import (
	"iter"
	"strconv"
	"strings"

	"github.com/example/go-wakati/internal/sentence"
)

type entry struct {
	surface string
	start   int
	end     int
}

// TokenList is the result of one Tokenize call. It holds its own copy of the
// tokenization and stays valid after the session is reused.
type TokenList struct {
	entries []entry
	tags    []string // row-major, one row per input character
	nTags   int
}

// Len returns the number of tokens.
func (l *TokenList) Len() int { return len(l.entries) }

// NTags returns the number of tag slots per token.
func (l *TokenList) NTags() int { return l.nTags }

// At returns the i-th token. It panics if i is out of range.
func (l *TokenList) At(i int) Token {
	_ = l.entries[i]
	return Token{list: l, index: i}
}

// All iterates over the tokens in order.
func (l *TokenList) All() iter.Seq2[int, Token] {
	return func(yield func(int, Token) bool) {
		for i := range l.entries {
			if !yield(i, Token{list: l, index: i}) {
				return
			}
		}
	}
}

// Surfaces returns the surface of every token.
func (l *TokenList) Surfaces() []string {
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.surface
	}
	return out
}

// AppendText appends the same rendering TokenizeToString produces.
func (l *TokenList) AppendText(b []byte) ([]byte, error) {
	for i, e := range l.entries {
		if i > 0 {
			b = append(b, ' ')
		}
		b = sentence.AppendEscapedString(b, e.surface)
		for j := range l.nTags {
			b = append(b, '/')
			b = sentence.AppendEscapedString(b, l.tag(e.end, j))
		}
	}
	return b, nil
}

func (l *TokenList) String() string {
	b, _ := l.AppendText(nil)
	return string(b)
}

func (l *TokenList) tag(end, slot int) string {
	return l.tags[(end-1)*l.nTags+slot]
}

// Token is a lightweight handle to one entry of a TokenList.
type Token struct {
	list  *TokenList
	index int
}

func (t Token) entry() entry { return t.list.entries[t.index] }

// Surface returns the token text as it appeared in the input.
func (t Token) Surface() string { return t.entry().surface }

// Start returns the index of the token's first character.
func (t Token) Start() int { return t.entry().start }

// End returns the index one past the token's last character.
func (t Token) End() int { return t.entry().end }

// NTags returns the number of tag slots.
func (t Token) NTags() int { return t.list.nTags }

// Tag returns the i-th tag. An empty string means the slot holds no tag.
func (t Token) Tag(i int) (string, error) {
	if i < 0 || i >= t.list.nTags {
		return "", &IndexError{Index: i, Len: t.list.nTags}
	}
	return t.list.tag(t.entry().end, i), nil
}

// Tags returns a copy of all tag slots.
func (t Token) Tags() []string {
	n := t.list.nTags
	if n == 0 {
		return nil
	}
	row := (t.entry().end - 1) * n
	out := make([]string, n)
	copy(out, t.list.tags[row:row+n])
	return out
}

// String returns the surface.
func (t Token) String() string { return t.Surface() }

// GoString renders the token with its tags for debugging.
func (t Token) GoString() string {
	var b strings.Builder
	b.WriteString("Token{surface: ")
	b.WriteString(strconv.Quote(t.Surface()))
	b.WriteString(", tags: [")
	for i, tag := range t.Tags() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Quote(tag))
	}
	b.WriteString("]}")
	return b.String()
}
