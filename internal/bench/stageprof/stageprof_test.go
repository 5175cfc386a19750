package stageprof_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-wakati/internal/bench/stageprof"
	"github.com/example/go-wakati/internal/testutil"
)

func TestRun(t *testing.T) {
	report, err := stageprof.Run(context.Background(), testutil.Model(), stageprof.Options{
		Text:        testutil.Sentence,
		Runs:        3,
		Warmup:      1,
		PredictTags: true,
		Normalize:   true,
		WsConst:     "G",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Chars != 9 {
		t.Errorf("Chars = %d; want 9", report.Chars)
	}

	if report.Tokens != 6 {
		t.Errorf("Tokens = %d; want 6", report.Tokens)
	}

	if report.Total <= 0 {
		t.Errorf("Total = %v; want > 0", report.Total)
	}

	var buf strings.Builder
	report.Write(&buf)
	for _, key := range []string{"avg_predict_ms:", "avg_total_ms:", "tokens: 6"} {
		if !strings.Contains(buf.String(), key) {
			t.Errorf("report missing %q:\n%s", key, buf.String())
		}
	}
}

func TestRun_CPUProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpu.prof")

	_, err := stageprof.Run(context.Background(), testutil.Model(), stageprof.Options{
		Text:       "社長は猫",
		Runs:       1,
		CPUProfile: path,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("cpu profile at %s missing or empty: %v", path, err)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts stageprof.Options
	}{
		{"zero runs", stageprof.Options{Text: "猫", Runs: 0}},
		{"bad wsconst", stageprof.Options{Text: "猫", Runs: 1, WsConst: "X"}},
		{"empty text", stageprof.Options{Text: "", Runs: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := stageprof.Run(context.Background(), testutil.Model(), tt.opts); err == nil {
				t.Error("Run() = nil error; want error")
			}
		})
	}
}
