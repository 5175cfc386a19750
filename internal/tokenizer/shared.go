package tokenizer

import (
	"iter"

	"github.com/example/go-wakati/internal/engine"
	"github.com/example/go-wakati/internal/intern"
	"github.com/example/go-wakati/internal/model"
	"github.com/example/go-wakati/internal/sentence"
	"github.com/example/go-wakati/internal/text"
)

// Shared is the read-only part of a tokenizer: the predictor, the dictionary
// word cache, the parsed wsconst filters and the concurrent-safe surface
// cache. Any number of sessions may use one Shared at the same time.
type Shared struct {
	predictor  *engine.Predictor
	words      *intern.Dictionary
	surfaces   *intern.Recent
	filters    []text.Filter
	normalizer text.Normalizer
	opts       options
}

// NewShared decodes a compressed model and prepares the read-only state.
func NewShared(modelBytes []byte, opts ...Option) (*Shared, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	filters, err := text.ParseWsConst(o.wsconst)
	if err != nil {
		return nil, &ConstructionError{Op: "parse wsconst", Err: err}
	}

	m, err := model.Decode(modelBytes)
	if err != nil {
		return nil, &ConstructionError{Op: "decode model", Err: err}
	}

	return newShared(m, o, filters)
}

// NewSharedFromLegacy reads a legacy line dictionary. That format carries no
// tag model, so tag prediction is always off.
func NewSharedFromLegacy(dict []byte, opts ...Option) (*Shared, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	o.predictTags = false

	filters, err := text.ParseWsConst(o.wsconst)
	if err != nil {
		return nil, &ConstructionError{Op: "parse wsconst", Err: err}
	}

	m, err := model.DecodeLegacy(dict)
	if err != nil {
		return nil, &ConstructionError{Op: "read legacy dictionary", Err: err}
	}

	return newShared(m, o, filters)
}

// NewSharedFromModel prepares the read-only state from an already decoded
// model.
func NewSharedFromModel(m *model.Model, opts ...Option) (*Shared, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	filters, err := text.ParseWsConst(o.wsconst)
	if err != nil {
		return nil, &ConstructionError{Op: "parse wsconst", Err: err}
	}

	return newShared(m, o, filters)
}

func newShared(m *model.Model, o options, filters []text.Filter) (*Shared, error) {
	var norm text.Normalizer

	// The predictor only sees normalized text, so its dictionary must be
	// normalized too. The word cache stays keyed on the surfaces as written.
	pm := m
	if o.normalize && m != nil {
		pm = normalizedModel(m, norm)
	}

	p, err := engine.NewPredictor(pm, o.predictTags)
	if err != nil {
		return nil, &ConstructionError{Op: "build predictor", Err: err}
	}

	surfaces, err := intern.NewRecent(o.surfaceCacheSize)
	if err != nil {
		return nil, &ConstructionError{Op: "build surface cache", Err: err}
	}

	return &Shared{
		predictor:  p,
		words:      intern.NewDictionary(surfacesOf(m)),
		surfaces:   surfaces,
		filters:    filters,
		normalizer: norm,
		opts:       o,
	}, nil
}

// normalizedModel returns a copy of m whose surfaces are normalized. Tags are
// shared with m.
func normalizedModel(m *model.Model, norm text.Normalizer) *model.Model {
	out := &model.Model{TagSlots: m.TagSlots, Words: make([]model.Word, len(m.Words))}
	for i, w := range m.Words {
		out.Words[i] = model.Word{Surface: norm.String(w.Surface), Tags: w.Tags}
	}
	return out
}

func surfacesOf(m *model.Model) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, w := range m.Words {
			if !yield(w.Surface) {
				return
			}
		}
	}
}

// NewSession returns a new session over sh with its own scratch buffers and
// tag cache.
func (sh *Shared) NewSession() *Session {
	return &Session{
		shared: sh,
		tags:   intern.NewLazy(),
	}
}

// TagSlots returns the number of tags each token carries.
func (sh *Shared) TagSlots() int { return sh.predictor.TagSlots() }

// DictionarySize returns the number of distinct dictionary words.
func (sh *Shared) DictionarySize() int { return sh.words.Len() }

// WsConst returns the filter codes in the order they are applied.
func (sh *Shared) WsConst() string {
	codes := make([]rune, len(sh.filters))
	for i, f := range sh.filters {
		codes[i] = f.Code()
	}
	return string(codes)
}

// Normalizes reports whether input is normalized before prediction.
func (sh *Shared) Normalizes() bool { return sh.opts.normalize }

func (sh *Shared) applyFilters(s *sentence.Sentence) {
	for _, f := range sh.filters {
		f.Apply(s)
	}
}
