// Package cli is the clausecheck command line: one-off reviews, comparisons
// and extraction against local files, and the MCP stdio server.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/clausecheck/internal/ai"
	"github.com/dgallion1/clausecheck/internal/config"
	"github.com/dgallion1/clausecheck/internal/document"
	"github.com/dgallion1/clausecheck/internal/parser"
	"github.com/dgallion1/clausecheck/internal/pipeline"
	"github.com/dgallion1/clausecheck/internal/rules"
)

// Version is injected at build time.
var Version = "dev"

// app carries what every subcommand needs, set up before it runs.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	logLevel string
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:     "clausecheck",
		Short:   "Deterministic contract review for facility agreements",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Load()
			level := a.cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = a.logLevel
			}
			// stdout carries command output and the MCP protocol.
			a.log = config.NewLogger(cmd.ErrOrStderr(), level, "text")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newReviewCmd(a),
		newCompareCmd(a),
		newPacksCmd(),
		newRulesCmd(),
		newExtractCmd(a),
		newMCPCmd(a),
	)
	return cmd
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// analyzer returns a model analyzer when withAI is set. It fails when no
// provider is configured rather than silently reviewing without one.
func (a *app) analyzer(withAI bool) (*ai.Analyzer, error) {
	if !withAI {
		return nil, nil
	}
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := ai.NewProvider(a.cfg)
	if errors.Is(err, ai.ErrNoProvider) {
		return nil, fmt.Errorf("--ai needs AI_PROVIDER set to claude, gemini or ollama")
	}
	if err != nil {
		return nil, err
	}
	return ai.NewAnalyzer(p, a.log, nil), nil
}

func (a *app) reviewer(analyzer *ai.Analyzer) *pipeline.Reviewer {
	return pipeline.NewReviewer(rules.NewEngine(a.log), analyzer, nil, a.log, pipeline.ReviewerConfig{
		DefaultPack:     a.cfg.DefaultPack,
		ChunkTokens:     a.cfg.AIChunkTokens,
		MaxConcurrentAI: a.cfg.MaxConcurrentAI,
	})
}

// readDocument extracts path, or reads plain text from stdin when path is
// "-".
func (a *app) readDocument(cmd *cobra.Command, path string) (*document.Document, error) {
	if path == "-" {
		b, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), a.cfg.MaxUploadBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		if int64(len(b)) > a.cfg.MaxUploadBytes {
			return nil, fmt.Errorf("stdin exceeds max size (%d bytes)", a.cfg.MaxUploadBytes)
		}
		return document.FromText("stdin", string(b)), nil
	}

	p, err := parser.ForFile(path, parser.Options{PDFFallbackPdftotext: a.cfg.PDFFallbackPdftotext})
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(bytes.NewReader(b), path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	return doc, nil
}
