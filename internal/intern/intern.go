// Package intern deduplicates output strings so that equal surfaces and tags
// returned across many calls share one backing allocation.
//
// Dictionary is filled once and read-only afterwards. Lazy grows for the life
// of its owner and never evicts; tag vocabularies are small and closed, so
// unbounded growth is accepted. Recent is a bounded, best-effort cache for
// surfaces that are not dictionary words.
package intern

import (
	"iter"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Dictionary is a read-only interner populated at construction. It is safe
// for concurrent lookups.
type Dictionary struct {
	words map[string]string
}

// NewDictionary interns every word yielded by words.
func NewDictionary(words iter.Seq[string]) *Dictionary {
	d := &Dictionary{words: make(map[string]string)}
	for w := range words {
		if _, ok := d.words[w]; ok {
			continue
		}
		v := strings.Clone(w)
		d.words[v] = v
	}
	return d
}

// Lookup returns the shared copy of b if it is a dictionary word. It does
// not allocate.
func (d *Dictionary) Lookup(b []byte) (string, bool) {
	v, ok := d.words[string(b)]
	return v, ok
}

// LookupString is Lookup for a string key.
func (d *Dictionary) LookupString(s string) (string, bool) {
	v, ok := d.words[s]
	return v, ok
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int { return len(d.words) }

// Lazy interns on first sight and keeps every value. It is not safe for
// concurrent use; the owner serializes access.
type Lazy struct {
	values map[string]string
}

// NewLazy returns an empty Lazy interner.
func NewLazy() *Lazy {
	return &Lazy{values: make(map[string]string)}
}

// Intern returns the shared copy of s, storing a clone on first sight.
func (l *Lazy) Intern(s string) string {
	if v, ok := l.values[s]; ok {
		return v
	}
	v := strings.Clone(s)
	l.values[v] = v
	return v
}

// Len returns the number of distinct values held.
func (l *Lazy) Len() int { return len(l.values) }

// Recent shares recently seen strings through a bounded LRU. It is safe for
// concurrent use. A nil *Recent or one built with size <= 0 never shares and
// simply copies.
type Recent struct {
	cache *lru.Cache[string, string]
}

// NewRecent returns a Recent holding at most size entries.
func NewRecent(size int) (*Recent, error) {
	if size <= 0 {
		return &Recent{}, nil
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Recent{cache: c}, nil
}

// Intern returns a string equal to b, shared with earlier calls when the
// value is still cached.
func (r *Recent) Intern(b []byte) string {
	if r == nil || r.cache == nil {
		return string(b)
	}
	s := string(b)
	if v, ok := r.cache.Get(s); ok {
		return v
	}
	r.cache.Add(s, s)
	return s
}

// Len returns the number of cached entries.
func (r *Recent) Len() int {
	if r == nil || r.cache == nil {
		return 0
	}
	return r.cache.Len()
}
