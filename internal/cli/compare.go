package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dgallion1/clausecheck/internal/compare"
	"github.com/dgallion1/clausecheck/internal/report"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		format string
		withAI bool
	)

	cmd := &cobra.Command{
		Use:   "compare <baseline> <new>",
		Short: "Compare a new version of an agreement against a baseline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "text" {
				return fmt.Errorf("invalid format %q (must be json or text)", format)
			}
			if args[0] == "-" && args[1] == "-" {
				return fmt.Errorf("only one of baseline and new can be read from stdin")
			}
			baseline, err := a.readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			updated, err := a.readDocument(cmd, args[1])
			if err != nil {
				return err
			}

			findings := compare.Compare(baseline.Text, updated.Text)
			if withAI {
				analyzer, err := a.analyzer(true)
				if err != nil {
					return err
				}
				aiFindings, err := analyzer.CompareDocuments(cmd.Context(), baseline.Text, updated.Text)
				if err != nil {
					return fmt.Errorf("ai comparison: %w", err)
				}
				findings = append(findings, aiFindings...)
			}
			if findings == nil {
				findings = []compare.Finding{}
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"findings": findings})
			}
			_, err = io.WriteString(out, report.Comparison(findings))
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format (json, text)")
	cmd.Flags().BoolVar(&withAI, "ai", false, "add model comparison from the configured AI_PROVIDER")
	return cmd
}
