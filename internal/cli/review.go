package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/clausecheck/internal/finding"
	"github.com/dgallion1/clausecheck/internal/pipeline"
	"github.com/dgallion1/clausecheck/internal/report"
	"github.com/dgallion1/clausecheck/internal/rules"
	"github.com/dgallion1/clausecheck/internal/store"
)

func newReviewCmd(a *app) *cobra.Command {
	var (
		pack     string
		format   string
		severity string
		withAI   bool
	)

	cmd := &cobra.Command{
		Use:   "review <file|->",
		Short: "Review an agreement and print its findings",
		Long:  "Run a rule pack over an agreement (.txt, .md, .html, .csv, .pdf, .docx, or - for stdin) and print the findings.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fl := finding.Filter{Severity: finding.Severity(strings.ToLower(severity))}
			if fl.Severity != "" && !fl.Severity.Valid() {
				return fmt.Errorf("invalid severity %q (must be high, medium or low)", severity)
			}
			switch format {
			case "json", "text", "html":
			default:
				return fmt.Errorf("invalid format %q (must be json, text or html)", format)
			}

			doc, err := a.readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			analyzer, err := a.analyzer(withAI)
			if err != nil {
				return err
			}
			review, err := a.reviewer(analyzer).ReviewText(cmd.Context(), pipeline.Request{
				Pack:     pack,
				AI:       withAI,
				Document: doc,
			})
			if err != nil {
				return err
			}
			if review.AIError != "" {
				a.log.Warn("ai analysis incomplete", "error", review.AIError)
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				review.Findings = fl.Apply(review.Findings)
				review.Counts = finding.Count(review.Findings)
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(review)
			case "html":
				page, err := report.HTML(report.Build(review, packLabel(review.Pack), fl, time.Now()))
				if err != nil {
					return err
				}
				_, err = io.WriteString(out, page)
				return err
			default:
				return writeText(out, review, fl)
			}
		},
	}

	cmd.Flags().StringVar(&pack, "pack", "", "rule pack (core, definitions, crossrefs, clarity); default from DEFAULT_PACK")
	cmd.Flags().StringVar(&format, "format", "text", "output format (json, text, html)")
	cmd.Flags().StringVar(&severity, "severity", "", "only show findings of this severity")
	cmd.Flags().BoolVar(&withAI, "ai", false, "add model findings from the configured AI_PROVIDER")
	return cmd
}

func packLabel(key string) string {
	if p, ok := rules.LookupPack(key); ok {
		return p.Label
	}
	return key
}

// writeText prints findings high severity first, one block per finding.
func writeText(w io.Writer, review *store.Review, fl finding.Filter) error {
	shown := fl.Apply(review.Findings)
	finding.SortBySeverity(shown)
	c := finding.Count(shown)

	title := review.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(w, "%s: %d findings (%d high, %d medium, %d low), pack %s\n",
		title, c.Total, c.High, c.Medium, c.Low, packLabel(review.Pack))
	for _, f := range shown {
		loc := f.LocationLabel
		if start, _, ok := f.Span(); ok && loc == "" {
			loc = fmt.Sprintf("byte %d", start)
		}
		fmt.Fprintf(w, "\n[%s] %s %s", strings.ToUpper(string(f.Severity)), f.ID, f.RuleTitle)
		if loc != "" {
			fmt.Fprintf(w, " (%s)", loc)
		}
		fmt.Fprintln(w)
		if f.MatchedText != "" {
			fmt.Fprintf(w, "  text: %q\n", f.MatchedText)
		}
		fmt.Fprintf(w, "  why: %s\n", f.Why)
		if f.Suggestion != "" {
			fmt.Fprintf(w, "  fix: %s\n", f.Suggestion)
		}
	}
	if review.AIError != "" {
		fmt.Fprintf(w, "\nAI analysis incomplete: %s\n", review.AIError)
	}
	return nil
}
