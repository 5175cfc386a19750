package main

import (
	"errors"
	"fmt"

	"github.com/example/go-wakati/internal/doctor"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	var probe string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run local model and configuration checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			dcfg := doctor.FromConfig(cfg)
			dcfg.Probe = probe

			result := doctor.Run(dcfg, stdout)
			if result.Failed() {
				for _, f := range result.Failures() {
					// #nosec G705 -- Writes plain diagnostic text to stderr for CLI output, not HTML rendering.
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(stdout, "doctor checks passed")

			return nil
		},
	}

	cmd.Flags().StringVar(&probe, "probe", doctor.DefaultProbe, "Text tokenized by the smoke check")

	return cmd
}
