// Package bench provides benchmarking primitives for the wakati bench command.
package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Run result and stats
// ---------------------------------------------------------------------------

// RunResult holds the timing and output size of a single tokenization pass.
type RunResult struct {
	Index       int
	Cold        bool // true for the first run (cold tag cache)
	Duration    time.Duration
	Chars       int
	Tokens      int
	CharsPerSec float64
}

// Stats holds aggregate timing statistics across all runs.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean over a slice of durations.
// An empty slice yields zero Stats.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

// MeanThroughput averages CharsPerSec over runs, skipping the cold run when
// warm runs exist.
func MeanThroughput(runs []RunResult) float64 {
	var sum float64
	var n int
	for _, r := range runs {
		if r.Cold && len(runs) > 1 {
			continue
		}
		sum += r.CharsPerSec
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Run times runs passes of tokenize over text. tokenize returns the number
// of tokens it produced. The first pass is marked cold.
func Run(text string, runs int, tokenize func(string) int) []RunResult {
	chars := utf8.RuneCountInString(text)
	out := make([]RunResult, 0, runs)
	for i := range runs {
		start := time.Now()
		tokens := tokenize(text)
		d := time.Since(start)
		out = append(out, RunResult{
			Index:       i,
			Cold:        i == 0,
			Duration:    d,
			Chars:       chars,
			Tokens:      tokens,
			CharsPerSec: CalcThroughput(chars, d),
		})
	}
	return out
}

// Durations extracts the per-run durations for ComputeStats.
func Durations(runs []RunResult) []time.Duration {
	out := make([]time.Duration, len(runs))
	for i, r := range runs {
		out[i] = r.Duration
	}
	return out
}

// ---------------------------------------------------------------------------
// Throughput helpers
// ---------------------------------------------------------------------------

// CalcThroughput returns characters processed per second.
// Returns 0 if d is zero to avoid division by zero.
func CalcThroughput(chars int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(chars) / d.Seconds()
}

// ---------------------------------------------------------------------------
// Throughput threshold gate
// ---------------------------------------------------------------------------

// CheckThroughputThreshold returns an error if charsPerSec < threshold.
// A threshold of 0 disables the gate.
func CheckThroughputThreshold(charsPerSec, threshold float64) error {
	if threshold <= 0 {
		return nil
	}
	if charsPerSec < threshold {
		return fmt.Errorf("throughput %.0f chars/s is below threshold %.0f", charsPerSec, threshold)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Output formatters
// ---------------------------------------------------------------------------

// FormatTable writes a human-readable ASCII table of bench results to w.
func FormatTable(runs []RunResult, stats Stats, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%-5s  %-5s  %10s  %8s  %8s  %12s\n", "Run", "Cold", "MS", "Chars", "Tokens", "Chars/s")
	fmt.Fprintln(sb, strings.Repeat("-", 58))

	for _, r := range runs {
		cold := ""
		if r.Cold {
			cold = "yes"
		}
		fmt.Fprintf(sb, "%-5d  %-5s  %10.3f  %8d  %8d  %12.0f\n",
			r.Index+1,
			cold,
			durationMS(r.Duration),
			r.Chars,
			r.Tokens,
			r.CharsPerSec,
		)
	}

	fmt.Fprintln(sb, strings.Repeat("-", 58))
	fmt.Fprintf(sb, "%-5s  %-5s  %10.3f  (min)\n", "", "", durationMS(stats.Min))
	fmt.Fprintf(sb, "%-5s  %-5s  %10.3f  (mean)\n", "", "", durationMS(stats.Mean))
	fmt.Fprintf(sb, "%-5s  %-5s  %10.3f  (max)\n", "", "", durationMS(stats.Max))

	fmt.Fprint(w, sb.String())
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// jsonReport is the top-level JSON structure emitted by FormatJSON.
type jsonReport struct {
	Runs  []jsonRun `json:"runs"`
	Stats jsonStats `json:"stats"`
}

type jsonRun struct {
	Index       int     `json:"index"`
	Cold        bool    `json:"cold"`
	DurationMS  float64 `json:"duration_ms"`
	Chars       int     `json:"chars"`
	Tokens      int     `json:"tokens"`
	CharsPerSec float64 `json:"chars_per_sec"`
}

type jsonStats struct {
	MinMS           float64 `json:"min_ms"`
	MeanMS          float64 `json:"mean_ms"`
	MaxMS           float64 `json:"max_ms"`
	MeanCharsPerSec float64 `json:"mean_chars_per_sec"`
}

// FormatJSON writes a JSON report of bench results to w.
func FormatJSON(runs []RunResult, stats Stats, w io.Writer) {
	jr := jsonReport{
		Runs: make([]jsonRun, len(runs)),
		Stats: jsonStats{
			MinMS:           durationMS(stats.Min),
			MeanMS:          durationMS(stats.Mean),
			MaxMS:           durationMS(stats.Max),
			MeanCharsPerSec: MeanThroughput(runs),
		},
	}
	for i, r := range runs {
		jr.Runs[i] = jsonRun{
			Index:       r.Index,
			Cold:        r.Cold,
			DurationMS:  durationMS(r.Duration),
			Chars:       r.Chars,
			Tokens:      r.Tokens,
			CharsPerSec: r.CharsPerSec,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(jr)
}
