// Package metrics exposes Prometheus collectors for tokenizer activity.
package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels.
const (
	OpTokenize = "tokenize"
	OpString   = "tokenize_to_string"
)

// Metrics holds the tokenizer collectors. A nil *Metrics is a no-op.
type Metrics struct {
	calls      *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	tokens     prometheus.Counter
	duration   *prometheus.HistogramVec
	tagEntries prometheus.Counter
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// Default returns the instance registered with the global Prometheus
// registry. Collectors are created once so that building many sessions does
// not trigger duplicate registration panics.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics constructs collectors and registers them with reg. An
// already registered collector of the same name is reused; any other
// registration error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wakati",
				Subsystem: "tokenizer",
				Name:      "calls_total",
				Help:      "Number of tokenizer calls.",
			},
			[]string{"op"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wakati",
				Subsystem: "tokenizer",
				Name:      "rejected_total",
				Help:      "Number of inputs the engine could not process.",
			},
			[]string{"op", "reason"},
		),
		tokens: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "wakati",
				Subsystem: "tokenizer",
				Name:      "tokens_total",
				Help:      "Number of tokens produced.",
			},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "wakati",
				Subsystem: "tokenizer",
				Name:      "call_duration_seconds",
				Help:      "Time spent in one tokenizer call, lock wait included.",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"op"},
		),
		tagEntries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "wakati",
				Subsystem: "tokenizer",
				Name:      "tag_cache_inserts_total",
				Help:      "Number of distinct tags added to session tag caches.",
			},
		),
	}

	m.calls = register(reg, m.calls)
	m.rejected = register(reg, m.rejected)
	m.tokens = register(reg, m.tokens)
	m.duration = register(reg, m.duration)
	m.tagEntries = register(reg, m.tagEntries)

	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveCall records one completed call.
func (m *Metrics) ObserveCall(op string, d time.Duration, tokens int) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(op).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
	if tokens > 0 {
		m.tokens.Add(float64(tokens))
	}
}

// IncRejected records an input the engine could not process.
func (m *Metrics) IncRejected(op, reason string) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(op).Inc()
	m.rejected.WithLabelValues(op, reason).Inc()
}

// AddTagEntries records n tags newly added to a session's tag cache.
func (m *Metrics) AddTagEntries(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.tagEntries.Add(float64(n))
}
