package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/example/go-wakati/internal/text"
	"github.com/example/go-wakati/internal/tokenizer"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const maxInputLine = 16 << 20

func newTokenizeCmd() *cobra.Command {
	var opts tokenizeOptions

	cmd := &cobra.Command{
		Use:   "tokenize",
		Short: "Segment text into words",
		Long: "Segment each input line into words. Input comes from --text or, " +
			"when that is empty, from stdin one line at a time. Output preserves input order.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if opts.Format != "string" && opts.Format != "json" {
				return fmt.Errorf("--format must be 'string' or 'json'")
			}
			if opts.Jobs < 1 {
				return fmt.Errorf("--jobs must be at least 1")
			}
			if opts.ChunkBytes < 0 {
				return fmt.Errorf("--chunk-bytes must not be negative")
			}

			lines, err := readLines(opts.Text, cmd.InOrStdin())
			if err != nil {
				return err
			}

			pool, err := loadPool(cfg, opts.Jobs)
			if err != nil {
				return err
			}

			return runTokenize(cmd.Context(), pool, lines, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Text, "text", "", "Text to tokenize (if empty, read lines from stdin)")
	cmd.Flags().StringVar(&opts.Format, "format", "string", "Output format: string|json")
	cmd.Flags().IntVar(&opts.Jobs, "jobs", 1, "Number of lines tokenized concurrently")
	cmd.Flags().IntVar(&opts.ChunkBytes, "chunk-bytes", 0, "Split long lines at sentence ends into chunks of about this many bytes (0 = off)")

	return cmd
}

type tokenizeOptions struct {
	Text       string
	Format     string
	Jobs       int
	ChunkBytes int
}

type tokenJSON struct {
	Surface string   `json:"surface"`
	Start   int      `json:"start"`
	End     int      `json:"end"`
	Tags    []string `json:"tags,omitempty"`
}

type lineJSON struct {
	Text   string      `json:"text"`
	Tokens []tokenJSON `json:"tokens"`
}

// readLines returns text as a single line when it is set, otherwise every
// line of stdin without its line terminator.
func readLines(text string, stdin io.Reader) ([]string, error) {
	if text != "" {
		return []string{text}, nil
	}

	var lines []string
	sc := bufio.NewScanner(stdin)
	sc.Buffer(make([]byte, 0, 64*1024), maxInputLine)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(lines) == 0 {
		return nil, errors.New("either provide --text or pipe text on stdin")
	}
	return lines, nil
}

// runTokenize tokenizes lines on pooled sessions and writes one output line
// per input line, in input order.
func runTokenize(ctx context.Context, pool *tokenizer.Pool, lines []string, opts tokenizeOptions, w io.Writer) error {
	out := make([][]byte, len(lines))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(pool.Size())
	for i, line := range lines {
		g.Go(func() error {
			return pool.Do(ctx, func(s *tokenizer.Session) error {
				b, err := tokenizeLine(s, line, opts)
				if err != nil {
					return fmt.Errorf("line %d: %w", i+1, err)
				}
				out[i] = b
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for _, b := range out {
		if _, err := bw.Write(b); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func tokenizeLine(s *tokenizer.Session, line string, opts tokenizeOptions) ([]byte, error) {
	chunks := []string{line}
	if opts.ChunkBytes > 0 {
		chunks = text.ChunkBySentence(line, opts.ChunkBytes)
	}

	if opts.Format == "string" {
		parts := make([]string, 0, len(chunks))
		for _, c := range chunks {
			if c == "" {
				continue
			}
			rendered, err := s.TryTokenizeToString(c)
			if err != nil {
				logRejected(c, err)
				continue
			}
			if rendered != "" {
				parts = append(parts, rendered)
			}
		}
		return []byte(strings.Join(parts, " ")), nil
	}

	res := lineJSON{Text: line, Tokens: []tokenJSON{}}
	offset := 0
	for _, c := range chunks {
		if c == "" {
			continue
		}
		tl, err := s.TryTokenize(c)
		if err != nil {
			logRejected(c, err)
		}
		for _, tok := range tl.All() {
			res.Tokens = append(res.Tokens, tokenJSON{
				Surface: tok.Surface(),
				Start:   offset + tok.Start(),
				End:     offset + tok.End(),
				Tags:    tok.Tags(),
			})
		}
		offset += utf8.RuneCountInString(c)
	}
	return json.Marshal(res)
}

func logRejected(chunk string, err error) {
	slog.Warn("tokenize rejected", slog.Int("text_len", len(chunk)), slog.String("error", err.Error()))
}
