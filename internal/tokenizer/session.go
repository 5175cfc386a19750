package tokenizer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/go-wakati/internal/intern"
	"github.com/example/go-wakati/internal/metrics"
	"github.com/example/go-wakati/internal/sentence"
)

// Session is a long-lived tokenizer. It owns two scratch sentences (the raw
// text and its normalized form), a render buffer and a tag cache, all reused
// across calls. Calls on one Session are serialized.
type Session struct {
	shared *Shared

	mu      sync.Mutex
	raw     sentence.Sentence
	norm    sentence.Sentence
	normBuf []byte
	strBuf  []byte
	tags    *intern.Lazy
}

// New builds a Session over a compressed model.
func New(modelBytes []byte, opts ...Option) (*Session, error) {
	sh, err := NewShared(modelBytes, opts...)
	if err != nil {
		return nil, err
	}
	return sh.NewSession(), nil
}

// NewFromLegacy builds a Session over a legacy line dictionary.
func NewFromLegacy(dict []byte, opts ...Option) (*Session, error) {
	sh, err := NewSharedFromLegacy(dict, opts...)
	if err != nil {
		return nil, err
	}
	return sh.NewSession(), nil
}

// Shared returns the read-only state s was built from.
func (s *Session) Shared() *Shared { return s.shared }

// Tokenize splits text into tokens. Input the engine rejects yields an
// empty list.
func (s *Session) Tokenize(text string) *TokenList {
	tl, _ := s.TryTokenize(text)
	return tl
}

// TryTokenize is Tokenize that also reports rejected input. The returned
// list is never nil. An empty text is not an error.
func (s *Session) TryTokenize(text string) (*TokenList, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	view, err := s.predict(text, nil)
	if err != nil {
		return &TokenList{}, s.reject(metrics.OpTokenize, text, err)
	}
	if view == nil {
		return &TokenList{}, nil
	}

	tl := s.collect(view)
	s.shared.opts.metrics.ObserveCall(metrics.OpTokenize, time.Since(start), tl.Len())
	return tl, nil
}

// TokenizeToString renders the tokenization of text as space-separated
// tokens, each followed by "/tag" per tag slot. Rejected input yields "".
func (s *Session) TokenizeToString(text string) string {
	out, _ := s.TryTokenizeToString(text)
	return out
}

// TryTokenizeToString is TokenizeToString that also reports rejected input.
func (s *Session) TryTokenizeToString(text string) (string, error) {
	return s.TraceTokenizeToString(text, nil)
}

// TraceTokenizeToString is TryTokenizeToString with hook called around each
// pipeline stage. A nil hook traces nothing.
func (s *Session) TraceTokenizeToString(text string, hook StageHook) (string, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	view, err := s.predict(text, hook)
	if err != nil {
		s.strBuf = s.strBuf[:0]
		return "", s.reject(metrics.OpString, text, err)
	}
	if view == nil {
		s.strBuf = s.strBuf[:0]
		return "", nil
	}

	done := hook.begin(StageRender)
	s.strBuf = view.AppendTokenized(s.strBuf[:0])
	done()

	s.shared.opts.metrics.ObserveCall(metrics.OpString, time.Since(start), view.NumTokens())
	return string(s.strBuf), nil
}

// TagCacheLen returns the number of distinct tags interned so far.
func (s *Session) TagCacheLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags.Len()
}

// predict loads text and fills boundaries, and tags when enabled. It returns
// the sentence holding the original text, or nil for empty input. Filters and
// tags run on the sentence the predictor saw, then are copied back.
func (s *Session) predict(text string, hook StageHook) (*sentence.Sentence, error) {
	if text == "" {
		return nil, nil
	}

	sh := s.shared
	raw := &s.raw

	done := hook.begin(StageLoad)
	err := raw.Update(text)
	done()
	if err != nil {
		return nil, err
	}

	view := raw
	if sh.opts.normalize {
		done = hook.begin(StageNormalize)
		s.normBuf = sh.normalizer.Append(s.normBuf[:0], raw.Bytes())
		err = s.norm.UpdateBytes(s.normBuf)
		done()
		if err != nil {
			return nil, err
		}
		view = &s.norm
	}

	done = hook.begin(StagePredict)
	sh.predictor.Predict(view)
	done()

	done = hook.begin(StageFilter)
	sh.applyFilters(view)
	if view != raw {
		err = raw.CopyBoundaries(view)
	}
	done()
	if err != nil {
		return nil, err
	}

	if sh.predictor.PredictsTags() {
		done = hook.begin(StageTags)
		sh.predictor.FillTags(view)
		if view != raw {
			err = raw.CopyTags(view)
		}
		done()
		if err != nil {
			return nil, err
		}
	}

	return raw, nil
}

// collect copies the tokenization held in view into a new TokenList.
func (s *Session) collect(view *sentence.Sentence) *TokenList {
	sh := s.shared
	tl := &TokenList{
		entries: make([]entry, 0, view.NumTokens()),
		nTags:   view.NTags(),
	}

	for sp := range view.Tokens() {
		b := view.SurfaceBytes(sp.Start, sp.End)
		surface, ok := sh.words.Lookup(b)
		if !ok {
			surface = sh.surfaces.Intern(b)
		}
		tl.entries = append(tl.entries, entry{surface: surface, start: sp.Start, end: sp.End})
	}

	if tl.nTags > 0 {
		before := s.tags.Len()
		src := view.Tags()
		tl.tags = make([]string, len(src))
		for i, tag := range src {
			if tag != "" {
				tl.tags[i] = s.tags.Intern(tag)
			}
		}
		sh.opts.metrics.AddTagEntries(s.tags.Len() - before)
	}

	return tl
}

func (s *Session) reject(op, text string, err error) error {
	reason := rejectReason(err)
	s.shared.opts.logger.Debug("tokenizer rejected input",
		"op", op,
		"reason", reason,
		"text_len", len(text),
		"error", err,
	)
	s.shared.opts.metrics.IncRejected(op, reason)
	return fmt.Errorf("%w: %w", ErrInputRejected, err)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, sentence.ErrInvalidUTF8):
		return "invalid_utf8"
	case errors.Is(err, sentence.ErrLengthMismatch):
		return "normalization_length"
	default:
		return "other"
	}
}
