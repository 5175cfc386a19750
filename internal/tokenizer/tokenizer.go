// Package tokenizer provides the long-lived tokenization session: it loads
// text into reusable scratch views, optionally normalizes it, runs the
// predictor, applies wsconst filters, interns output strings and assembles
// an independent TokenList for each call.
//
// A Session serializes its own calls. Concurrent callers either share one
// Session or take their own from a Pool; all sessions built from one Shared
// reuse its read-only predictor and dictionary cache.
package tokenizer

import (
	"log/slog"

	"github.com/example/go-wakati/internal/metrics"
)

// DefaultSurfaceCacheSize is the default capacity of the best-effort cache
// for surfaces that are not dictionary words.
const DefaultSurfaceCacheSize = 4096

type options struct {
	predictTags      bool
	wsconst          string
	normalize        bool
	surfaceCacheSize int
	logger           *slog.Logger
	metrics          *metrics.Metrics
}

func defaultOptions() options {
	return options{
		normalize:        true,
		surfaceCacheSize: DefaultSurfaceCacheSize,
		logger:           slog.Default(),
	}
}

// Option configures a Shared or Session at construction.
type Option func(*options)

// WithPredictTags enables tag prediction after boundary prediction.
func WithPredictTags(on bool) Option {
	return func(o *options) { o.predictTags = on }
}

// WithWsConst sets the boundary-constraint configuration: any of D (digit),
// R (roman), H (hiragana), T (katakana), K (kanji), O (other) and G
// (grapheme cluster), applied in the given order.
func WithWsConst(spec string) Option {
	return func(o *options) { o.wsconst = spec }
}

// WithNormalize toggles full-width normalization of the text the predictor
// sees. It is on by default.
func WithNormalize(on bool) Option {
	return func(o *options) { o.normalize = on }
}

// WithSurfaceCacheSize bounds the best-effort cache for non-dictionary
// surfaces. Zero disables it.
func WithSurfaceCacheSize(n int) Option {
	return func(o *options) { o.surfaceCacheSize = n }
}

// WithLogger sets the logger that receives rejected-input diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the Prometheus collectors calls are reported to.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}
