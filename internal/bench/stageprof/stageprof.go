// Package stageprof times the stages of the tokenization pipeline
// separately and optionally writes a CPU profile with per-stage labels.
package stageprof

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"
	"unicode/utf8"

	"github.com/example/go-wakati/internal/model"
	"github.com/example/go-wakati/internal/tokenizer"
)

// Options controls a profiling session.
type Options struct {
	Text        string
	Runs        int
	Warmup      int
	PredictTags bool
	Normalize   bool
	WsConst     string
	CPUProfile  string
}

// Report holds per-stage averages over the profiled runs.
type Report struct {
	Text    string
	Runs    int
	Warmup  int
	Chars   int
	Tokens  int
	Load    time.Duration
	Norm    time.Duration
	Predict time.Duration
	Filter  time.Duration
	Tags    time.Duration
	Render  time.Duration
	Total   time.Duration
}

// Run profiles opts.Runs passes over opts.Text after opts.Warmup unprofiled
// passes. Each pass is one string tokenization on a session built from m,
// timed per stage through a stage hook.
func Run(ctx context.Context, m *model.Model, opts Options) (Report, error) {
	if opts.Runs < 1 {
		return Report{}, errors.New("runs must be >= 1")
	}
	if opts.Text == "" {
		return Report{}, errors.New("text is required")
	}

	sh, err := tokenizer.NewSharedFromModel(m,
		tokenizer.WithPredictTags(opts.PredictTags),
		tokenizer.WithNormalize(opts.Normalize),
		tokenizer.WithWsConst(opts.WsConst),
	)
	if err != nil {
		return Report{}, err
	}
	session := sh.NewSession()

	for i := range opts.Warmup {
		if _, err := session.TryTokenizeToString(opts.Text); err != nil {
			return Report{}, fmt.Errorf("warmup run %d failed: %w", i+1, err)
		}
	}

	if opts.CPUProfile != "" {
		f, err := os.Create(opts.CPUProfile)
		if err != nil {
			return Report{}, fmt.Errorf("create cpuprofile: %w", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return Report{}, fmt.Errorf("start cpuprofile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	stages := make(map[tokenizer.Stage]time.Duration)
	hook := func(st tokenizer.Stage) func() {
		pprof.SetGoroutineLabels(pprof.WithLabels(ctx, pprof.Labels("stage", string(st))))
		start := time.Now()
		return func() {
			stages[st] += time.Since(start)
			pprof.SetGoroutineLabels(ctx)
		}
	}

	var total time.Duration
	for i := range opts.Runs {
		start := time.Now()
		if _, err := session.TraceTokenizeToString(opts.Text, hook); err != nil {
			return Report{}, fmt.Errorf("profiled run %d failed: %w", i+1, err)
		}
		total += time.Since(start)
	}

	div := time.Duration(opts.Runs)
	return Report{
		Text:    opts.Text,
		Runs:    opts.Runs,
		Warmup:  opts.Warmup,
		Chars:   utf8.RuneCountInString(opts.Text),
		Tokens:  session.Tokenize(opts.Text).Len(),
		Load:    stages[tokenizer.StageLoad] / div,
		Norm:    stages[tokenizer.StageNormalize] / div,
		Predict: stages[tokenizer.StagePredict] / div,
		Filter:  stages[tokenizer.StageFilter] / div,
		Tags:    stages[tokenizer.StageTags] / div,
		Render:  stages[tokenizer.StageRender] / div,
		Total:   total / div,
	}, nil
}

// Write prints r as key: value lines.
func (r Report) Write(w io.Writer) {
	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

	fmt.Fprintf(w, "text: %q\n", r.Text)
	fmt.Fprintf(w, "runs: %d (warmup %d)\n", r.Runs, r.Warmup)
	fmt.Fprintf(w, "chars: %d\n", r.Chars)
	fmt.Fprintf(w, "tokens: %d\n", r.Tokens)
	fmt.Fprintf(w, "avg_load_ms: %.4f\n", ms(r.Load))
	fmt.Fprintf(w, "avg_normalize_ms: %.4f\n", ms(r.Norm))
	fmt.Fprintf(w, "avg_predict_ms: %.4f\n", ms(r.Predict))
	fmt.Fprintf(w, "avg_filter_ms: %.4f\n", ms(r.Filter))
	fmt.Fprintf(w, "avg_tags_ms: %.4f\n", ms(r.Tags))
	fmt.Fprintf(w, "avg_render_ms: %.4f\n", ms(r.Render))
	fmt.Fprintf(w, "avg_total_ms: %.4f\n", ms(r.Total))

	if r.Total > 0 {
		share := func(d time.Duration) float64 { return 100 * float64(d) / float64(r.Total) }
		fmt.Fprintf(w, "share_predict_pct: %.2f\n", share(r.Predict))
		fmt.Fprintf(w, "share_tags_pct: %.2f\n", share(r.Tags))
		fmt.Fprintf(w, "share_render_pct: %.2f\n", share(r.Render))
	}
}
