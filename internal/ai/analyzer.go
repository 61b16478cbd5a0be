package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/clausecheck/internal/compare"
	"github.com/dgallion1/clausecheck/internal/finding"
)

// Operation names used in stats, metrics and logs.
const (
	OpDocument = "document"
	OpClause   = "clause"
	OpCompare  = "compare"
)

// CallObserver is notified after every provider call.
type CallObserver interface {
	ObserveLLMCall(provider, operation string, elapsed time.Duration, err error)
}

// Analyzer turns provider responses into validated findings.
type Analyzer struct {
	provider Provider
	log      *slog.Logger
	stats    *LLMStats
	observer CallObserver
}

type Option func(*Analyzer)

// WithCallObserver reports each provider call to o.
func WithCallObserver(o CallObserver) Option {
	return func(a *Analyzer) { a.observer = o }
}

// NewAnalyzer wraps p. A nil provider yields an analyzer whose operations all
// return ErrNoProvider. stats may be nil.
func NewAnalyzer(p Provider, log *slog.Logger, stats *LLMStats, opts ...Option) *Analyzer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	a := &Analyzer{provider: p, log: log, stats: stats}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Enabled reports whether a provider is configured.
func (a *Analyzer) Enabled() bool {
	return a != nil && a.provider != nil
}

// Provider returns the configured provider, or nil.
func (a *Analyzer) Provider() Provider {
	if a == nil {
		return nil
	}
	return a.provider
}

// Stats returns the call statistics, or nil when none are kept.
func (a *Analyzer) Stats() *LLMStats {
	if a == nil {
		return nil
	}
	return a.stats
}

// AnalyzeDocument reviews the first MaxDocumentBytes of text. Findings are
// numbered AI-1.. and carry offsets when their matched text occurs in text.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, text string) ([]finding.Finding, error) {
	return a.AnalyzeSection(ctx, nil, text)
}

// AnalyzeSection is AnalyzeDocument with the heading path of the passage
// included in the prompt.
func (a *Analyzer) AnalyzeSection(ctx context.Context, breadcrumb []string, text string) ([]finding.Finding, error) {
	if !a.Enabled() {
		return nil, ErrNoProvider
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	raw, err := a.call(ctx, OpDocument, BuildDocumentPrompt(breadcrumb, text))
	if err != nil {
		return nil, err
	}
	return a.toFindings(raw, text), nil
}

// AnalyzeClause reviews a single clause of at most MaxClauseBytes.
func (a *Analyzer) AnalyzeClause(ctx context.Context, text string) ([]finding.Finding, error) {
	if !a.Enabled() {
		return nil, ErrNoProvider
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	raw, err := a.call(ctx, OpClause, BuildClausePrompt(text))
	if err != nil {
		return nil, err
	}
	return a.toFindings(raw, text), nil
}

// CompareDocuments asks the model for meaningful differences between two
// versions. Results use the comparison finding shape with Source ai.
func (a *Analyzer) CompareDocuments(ctx context.Context, baseline, updated string) ([]compare.Finding, error) {
	if !a.Enabled() {
		return nil, ErrNoProvider
	}
	if strings.TrimSpace(baseline) == "" || strings.TrimSpace(updated) == "" {
		return nil, nil
	}
	raw, err := a.call(ctx, OpCompare, BuildComparePrompt(baseline, updated))
	if err != nil {
		return nil, err
	}

	var entries []RawComparison
	if !decodeArray(raw, &entries) {
		a.log.Warn("unparseable comparison response", "provider", a.provider.Name(), "raw", truncate(raw, 200))
		return []compare.Finding{}, nil
	}
	out := make([]compare.Finding, 0, len(entries))
	for i := range entries {
		c := &entries[i]
		if !ValidateComparison(c) {
			a.log.Debug("dropped comparison entry", "title", c.RuleTitle)
			continue
		}
		f := compare.Finding{
			ID:         "AI-" + strconv.Itoa(len(out)+1),
			Severity:   finding.Severity(c.Severity),
			RuleTitle:  c.RuleTitle,
			Why:        c.Why,
			Suggestion: c.Suggestion,
			Source:     finding.SourceAI,
		}
		if c.BaselineSnippet != nil {
			f.BaselineSnippet = clip(strings.TrimSpace(*c.BaselineSnippet), maxSnippetLen)
		}
		if c.NewSnippet != nil {
			f.NewSnippet = clip(strings.TrimSpace(*c.NewSnippet), maxSnippetLen)
		}
		out = append(out, f)
	}
	return out, nil
}

func (a *Analyzer) call(ctx context.Context, op, prompt string) (string, error) {
	start := time.Now()
	raw, err := a.provider.Generate(ctx, prompt)
	elapsed := time.Since(start)

	if a.stats != nil {
		a.stats.Record(op, elapsed, err != nil)
	}
	if a.observer != nil {
		a.observer.ObserveLLMCall(a.provider.Name(), op, elapsed, err)
	}
	if err != nil {
		a.log.Warn("ai call failed", "provider", a.provider.Name(), "operation", op, "error", err)
		return "", err
	}
	a.log.Debug("ai call", "provider", a.provider.Name(), "model", a.provider.Model(),
		"operation", op, "duration_ms", elapsed.Milliseconds(), "response_bytes", len(raw))
	return raw, nil
}

// toFindings decodes a response. Malformed output yields an empty list.
func (a *Analyzer) toFindings(raw, text string) []finding.Finding {
	var entries []RawFinding
	if !decodeArray(raw, &entries) {
		a.log.Warn("unparseable analysis response", "provider", a.provider.Name(), "raw", truncate(raw, 200))
		return []finding.Finding{}
	}
	out := make([]finding.Finding, 0, len(entries))
	for i := range entries {
		r := &entries[i]
		if !ValidateAIFinding(r) {
			a.log.Debug("dropped analysis entry", "title", r.Title)
			continue
		}
		f := finding.Finding{
			Severity:      finding.Severity(r.Severity),
			RuleID:        "AI",
			RuleTitle:     r.Title,
			Category:      finding.Category(r.Category),
			Why:           r.Why,
			Suggestion:    r.Suggestion,
			MatchedText:   r.MatchedText,
			LocationLabel: r.LocationLabel,
			Source:        finding.SourceAI,
		}
		Locate(&f, text, 0)
		out = append(out, f)
	}
	Number(out, 1)
	return out
}

// Locate sets the span of f to the first literal occurrence of its matched
// text in text at or after from. The span is cleared when there is none.
func Locate(f *finding.Finding, text string, from int) {
	f.Start, f.End = nil, nil
	if f.MatchedText == "" || from < 0 || from > len(text) {
		return
	}
	if i := strings.Index(text[from:], f.MatchedText); i >= 0 {
		start := from + i
		f.Start = finding.Offset(start)
		f.End = finding.Offset(start + len(f.MatchedText))
	}
}

// Number assigns ids AI-first, AI-first+1, ... in order.
func Number(findings []finding.Finding, first int) {
	for i := range findings {
		findings[i].ID = "AI-" + strconv.Itoa(first+i)
	}
}

// decodeArray parses a JSON array out of a model response, tolerating code
// fences and prose around the array.
func decodeArray(raw string, v any) bool {
	s := stripCodeBlock(raw)
	if json.Unmarshal([]byte(s), v) == nil {
		return true
	}
	start, end := strings.Index(s, "["), strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return false
	}
	return json.Unmarshal([]byte(s[start:end+1]), v) == nil
}
