// Package doctor provides preflight checks for a wakati installation.
package doctor

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/go-wakati/internal/config"
	"github.com/example/go-wakati/internal/model"
	"github.com/example/go-wakati/internal/text"
	"github.com/example/go-wakati/internal/tokenizer"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// DefaultProbe is tokenized by the smoke check when Config.Probe is empty.
const DefaultProbe = "東京都に住む"

// Config holds the inputs for each doctor check.
type Config struct {
	ModelPath   string
	ModelFormat string
	// ModelSHA256 is the pinned digest; empty skips the checksum check.
	ModelSHA256 string
	WsConst     string
	PredictTags bool
	Probe       string
}

// FromConfig copies the relevant settings out of an application config.
func FromConfig(cfg config.Config) Config {
	return Config{
		ModelPath:   cfg.Paths.ModelPath,
		ModelFormat: cfg.Tokenizer.ModelFormat,
		ModelSHA256: cfg.Paths.ModelSHA256,
		WsConst:     cfg.Tokenizer.WsConst,
		PredictTags: cfg.Tokenizer.PredictTags,
	}
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark. Checks that depend
// on a readable model are skipped once an earlier one fails.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- wsconst ----------------------------------------------------------
	if _, err := text.ParseWsConst(cfg.WsConst); err != nil {
		res.fail(fmt.Sprintf("wsconst: %v", err))
		fmt.Fprintf(w, "%s wsconst %q: %v\n", FailMark, cfg.WsConst, err)
	} else {
		fmt.Fprintf(w, "%s wsconst: %q\n", PassMark, cfg.WsConst)
	}

	// ---- model format -----------------------------------------------------
	format, err := config.NormalizeModelFormat(cfg.ModelFormat)
	if err != nil {
		res.fail(fmt.Sprintf("model format: %v", err))
		fmt.Fprintf(w, "%s model format: %v\n", FailMark, err)
		return res
	}
	fmt.Fprintf(w, "%s model format: %s\n", PassMark, format)

	// ---- model file -------------------------------------------------------
	fi, err := os.Stat(cfg.ModelPath)
	switch {
	case err != nil:
		res.fail(fmt.Sprintf("model file %q: %v", cfg.ModelPath, err))
		fmt.Fprintf(w, "%s model file %s: not found\n", FailMark, cfg.ModelPath)
		return res
	case fi.IsDir():
		res.fail(fmt.Sprintf("model file %q: is a directory", cfg.ModelPath))
		fmt.Fprintf(w, "%s model file %s: is a directory\n", FailMark, cfg.ModelPath)
		return res
	default:
		fmt.Fprintf(w, "%s model file: %s (%d bytes)\n", PassMark, cfg.ModelPath, fi.Size())
	}

	// ---- checksum ---------------------------------------------------------
	if strings.TrimSpace(cfg.ModelSHA256) == "" {
		fmt.Fprintf(w, "%s model checksum: skipped (no pin)\n", PassMark)
	} else if err := model.VerifyChecksum(cfg.ModelPath, cfg.ModelSHA256); err != nil {
		res.fail(fmt.Sprintf("model checksum: %v", err))
		fmt.Fprintf(w, "%s model checksum: %v\n", FailMark, err)
	} else {
		fmt.Fprintf(w, "%s model checksum: matches\n", PassMark)
	}

	// ---- decode -----------------------------------------------------------
	m, err := model.LoadFile(cfg.ModelPath, format == config.ModelFormatLegacy)
	if err != nil {
		res.fail(fmt.Sprintf("model decode: %v", err))
		fmt.Fprintf(w, "%s model decode: %v\n", FailMark, err)
		return res
	}
	fmt.Fprintf(w, "%s model decode: %d words, %d tag slots\n", PassMark, len(m.Words), m.TagSlots)

	// ---- smoke tokenization ----------------------------------------------
	probe := cfg.Probe
	if probe == "" {
		probe = DefaultProbe
	}

	s, err := tokenizer.NewSharedFromModel(m,
		tokenizer.WithPredictTags(cfg.PredictTags && format != config.ModelFormatLegacy),
		tokenizer.WithWsConst(cfg.WsConst),
	)
	if err != nil {
		res.fail(fmt.Sprintf("tokenizer: %v", err))
		fmt.Fprintf(w, "%s tokenizer: %v\n", FailMark, err)
		return res
	}

	out, err := s.NewSession().TryTokenizeToString(probe)
	if err != nil {
		res.fail(fmt.Sprintf("tokenizer: %v", err))
		fmt.Fprintf(w, "%s tokenizer: %v\n", FailMark, err)
		return res
	}
	fmt.Fprintf(w, "%s tokenizer: %s\n", PassMark, out)

	return res
}
