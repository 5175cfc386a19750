package main

import (
	"fmt"
	"strings"

	"github.com/example/go-wakati/internal/bench"
	"github.com/example/go-wakati/internal/bench/stageprof"
	"github.com/example/go-wakati/internal/config"
	"github.com/example/go-wakati/internal/model"
	"github.com/example/go-wakati/internal/tokenizer"
	"github.com/spf13/cobra"
)

const defaultBenchText = "まぁ社長は火星猫だ。東京都に住む友人から１２０円の切手が届いた。"

func newBenchCmd() *cobra.Command {
	var (
		text          string
		runs          int
		warmup        int
		format        string
		minThroughput float64
		stages        bool
		cpuprofile    string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark tokenization latency and throughput",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("--text must not be empty")
			}
			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1")
			}
			if format != "table" && format != "json" {
				return fmt.Errorf("--format must be 'table' or 'json'")
			}

			stdout := cmd.OutOrStdout()

			if stages {
				m, err := model.LoadFile(cfg.Paths.ModelPath, cfg.Tokenizer.ModelFormat == config.ModelFormatLegacy)
				if err != nil {
					return err
				}

				report, err := stageprof.Run(cmd.Context(), m, stageprof.Options{
					Text:        text,
					Runs:        runs,
					Warmup:      warmup,
					PredictTags: cfg.Tokenizer.PredictTags && cfg.Tokenizer.ModelFormat != config.ModelFormatLegacy,
					Normalize:   cfg.Tokenizer.Normalize,
					WsConst:     cfg.Tokenizer.WsConst,
					CPUProfile:  cpuprofile,
				})
				if err != nil {
					return err
				}
				report.Write(stdout)
				return nil
			}

			sh, err := tokenizer.LoadShared(cfg)
			if err != nil {
				return err
			}
			session := sh.NewSession()

			for range warmup {
				session.Tokenize(text)
			}

			results := bench.Run(text, runs, func(s string) int {
				return session.Tokenize(s).Len()
			})
			stats := bench.ComputeStats(bench.Durations(results))

			switch format {
			case "json":
				bench.FormatJSON(results, stats, stdout)
			default:
				bench.FormatTable(results, stats, stdout)
			}

			return bench.CheckThroughputThreshold(bench.MeanThroughput(results), minThroughput)
		},
	}

	cmd.Flags().StringVar(&text, "text", defaultBenchText, "Text to tokenize on each run")
	cmd.Flags().IntVar(&runs, "runs", 5, "Number of timed runs")
	cmd.Flags().IntVar(&warmup, "warmup", 0, "Number of untimed runs before measuring")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	cmd.Flags().Float64Var(&minThroughput, "min-throughput", 0, "Exit non-zero if mean chars/s falls below this value (0 = disabled)")
	cmd.Flags().BoolVar(&stages, "stages", false, "Report per-stage timings instead of whole-call runs")
	cmd.Flags().StringVar(&cpuprofile, "cpuprofile", "", "Write a CPU profile with stage labels (with --stages)")

	return cmd
}
