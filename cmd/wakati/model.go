package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/go-wakati/internal/config"
	"github.com/example/go-wakati/internal/model"
	"github.com/spf13/cobra"
)

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Model packing, conversion and inspection commands",
	}

	cmd.AddCommand(newModelPackCmd())
	cmd.AddCommand(newModelConvertCmd())
	cmd.AddCommand(newModelInspectCmd())
	return cmd
}

func newModelPackCmd() *cobra.Command {
	var (
		source, out string
		noTags      bool
	)

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Pack a YAML dictionary source into a compressed model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(source) == "" {
				return fmt.Errorf("--source is required")
			}

			f, err := os.Open(source)
			if err != nil {
				return fmt.Errorf("open source: %w", err)
			}
			defer f.Close()

			m, err := model.LoadSource(f)
			if err != nil {
				return err
			}
			if noTags {
				m = m.WithoutTags()
			}

			return writeModel(cmd.OutOrStdout(), out, m)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "YAML dictionary source (required)")
	cmd.Flags().StringVar(&out, "out", "models/model.zst", "Output model path")
	cmd.Flags().BoolVar(&noTags, "no-tags", false, "Drop the tag model and pack surfaces only")

	return cmd
}

func newModelConvertCmd() *cobra.Command {
	var legacy, out string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a legacy line dictionary into a compressed model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(legacy) == "" {
				return fmt.Errorf("--legacy is required")
			}

			m, err := model.LoadFile(legacy, true)
			if err != nil {
				return err
			}

			return writeModel(cmd.OutOrStdout(), out, m)
		},
	}

	cmd.Flags().StringVar(&legacy, "legacy", "", "Legacy line dictionary (required)")
	cmd.Flags().StringVar(&out, "out", "models/model.zst", "Output model path")

	return cmd
}

func writeModel(w io.Writer, path string, m *model.Model) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := model.WriteFile(path, m); err != nil {
		return err
	}

	sum, err := model.FileSHA256(path)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "wrote %s: %d words, %d tag slots, sha256 %s\n", path, len(m.Words), m.TagSlots, sum)
	return err
}

func newModelInspectCmd() *cobra.Command {
	var listWords bool

	cmd := &cobra.Command{
		Use:   "inspect [path]",
		Short: "Print a summary of a model file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			path := cfg.Paths.ModelPath
			if len(args) == 1 {
				path = args[0]
			}
			legacy := cfg.Tokenizer.ModelFormat == config.ModelFormatLegacy

			m, err := model.LoadFile(path, legacy)
			if err != nil {
				return err
			}

			sum, err := model.FileSHA256(path)
			if err != nil {
				return err
			}

			format := config.ModelFormatZstd
			if legacy {
				format = config.ModelFormatLegacy
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "path: %s\n", path)
			fmt.Fprintf(w, "format: %s\n", format)
			fmt.Fprintf(w, "sha256: %s\n", sum)
			fmt.Fprintf(w, "words: %d\n", len(m.Words))
			fmt.Fprintf(w, "tag_slots: %d\n", m.TagSlots)

			if listWords {
				for _, word := range m.Words {
					fmt.Fprintf(w, "%s\t%s\n", word.Surface, strings.Join(word.Tags, ","))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&listWords, "words", false, "List every word with its tags")

	return cmd
}
