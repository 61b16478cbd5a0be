package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/clausecheck/internal/ai"
	"github.com/dgallion1/clausecheck/internal/document"
	"github.com/dgallion1/clausecheck/internal/finding"
	"github.com/dgallion1/clausecheck/internal/rules"
	"github.com/dgallion1/clausecheck/internal/store"
)

// scriptedProvider answers every prompt with response, failing the first
// failures calls with err.
type scriptedProvider struct {
	mu       sync.Mutex
	response string
	err      error
	failures int
	calls    int
}

func (p *scriptedProvider) Name() string  { return "scripted" }
func (p *scriptedProvider) Model() string { return "scripted-1" }
func (p *scriptedProvider) Close()        {}

func (p *scriptedProvider) Generate(_ context.Context, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil && (p.failures < 0 || p.calls <= p.failures) {
		return "", p.err
	}
	return p.response, nil
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

const discretionResponse = `[{"title":"Unilateral discretion","severity":"high","category":"commercial-risk","why":"One party decides alone.","suggestion":"Require consent.","matchedText":"sole discretion"}]`

const agreementText = "1. Payment\n\nThe Borrower shall pay the fee on TBD.\n\n2. Amendments\n\nThe Lender may amend the fee in its sole discretion."

func shrinkBackoff(t *testing.T) {
	t.Helper()
	unit, limit := backoffUnit, backoffCap
	backoffUnit, backoffCap = time.Millisecond, 5*time.Millisecond
	t.Cleanup(func() { backoffUnit, backoffCap = unit, limit })
}

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func newTestReviewer(t *testing.T, p ai.Provider, st store.Store, cfg ReviewerConfig) *Reviewer {
	t.Helper()
	var analyzer *ai.Analyzer
	if p != nil {
		analyzer = ai.NewAnalyzer(p, nil, nil)
	}
	return NewReviewer(rules.NewEngine(nil), analyzer, st, nil, cfg)
}

func countSource(fs []finding.Finding, src finding.Source) int {
	n := 0
	for _, f := range fs {
		if f.Source == src {
			n++
		}
	}
	return n
}

func TestReviewText_RulesOnlyIsSaved(t *testing.T) {
	st := openTestStore(t)
	r := newTestReviewer(t, nil, st, ReviewerConfig{})

	review, err := r.ReviewText(context.Background(), Request{Title: "Facility", Text: agreementText})
	if err != nil {
		t.Fatalf("ReviewText: %v", err)
	}
	if review.Pack != rules.PackCore {
		t.Errorf("default pack = %q", review.Pack)
	}
	if countSource(review.Findings, finding.SourceRule) == 0 {
		t.Fatal("expected rule findings for the TBD placeholder")
	}
	if countSource(review.Findings, finding.SourceAI) != 0 || review.AIError != "" {
		t.Errorf("AI was not requested: %+v", review)
	}
	if review.Counts.Total != len(review.Findings) {
		t.Errorf("counts = %+v for %d findings", review.Counts, len(review.Findings))
	}

	saved, err := st.Get(context.Background(), review.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if saved.Title != "Facility" || len(saved.Findings) != len(review.Findings) {
		t.Errorf("saved review = %+v", saved)
	}
}

func TestReviewText_UnknownPack(t *testing.T) {
	r := newTestReviewer(t, nil, nil, ReviewerConfig{})
	_, err := r.ReviewText(context.Background(), Request{Text: agreementText, Pack: "tax"})
	if !errors.Is(err, ErrUnknownPack) {
		t.Fatalf("expected ErrUnknownPack, got %v", err)
	}
}

func TestReviewText_AIFindingsAppended(t *testing.T) {
	p := &scriptedProvider{response: discretionResponse}
	r := newTestReviewer(t, p, nil, ReviewerConfig{})

	review, err := r.ReviewText(context.Background(), Request{Text: agreementText, AI: true})
	if err != nil {
		t.Fatalf("ReviewText: %v", err)
	}
	var aiFindings []finding.Finding
	for _, f := range review.Findings {
		if f.Source == finding.SourceAI {
			aiFindings = append(aiFindings, f)
		}
	}
	if len(aiFindings) != 1 {
		t.Fatalf("expected one AI finding, got %d", len(aiFindings))
	}
	f := aiFindings[0]
	if f.ID != "AI-1" {
		t.Errorf("id = %s", f.ID)
	}
	start, end, ok := f.Span()
	if !ok || agreementText[start:end] != "sole discretion" {
		t.Errorf("AI finding not located: %+v", f)
	}
}

func TestReviewText_AIErrorKeepsRuleFindings(t *testing.T) {
	p := &scriptedProvider{err: errors.New("model unavailable"), failures: -1}
	r := newTestReviewer(t, p, nil, ReviewerConfig{})

	review, err := r.ReviewText(context.Background(), Request{Text: agreementText, AI: true})
	if err != nil {
		t.Fatalf("AI failure should not fail the review: %v", err)
	}
	if !strings.Contains(review.AIError, "model unavailable") {
		t.Errorf("AIError = %q", review.AIError)
	}
	if countSource(review.Findings, finding.SourceRule) == 0 {
		t.Error("rule findings should be kept")
	}
	if p.callCount() != 1 {
		t.Errorf("non-retryable error should not be retried, got %d calls", p.callCount())
	}
}

func TestReviewText_AIWithoutProvider(t *testing.T) {
	r := newTestReviewer(t, nil, nil, ReviewerConfig{})
	review, err := r.ReviewText(context.Background(), Request{Text: agreementText, AI: true})
	if err != nil {
		t.Fatalf("ReviewText: %v", err)
	}
	if review.AIError != ai.ErrNoProvider.Error() {
		t.Errorf("AIError = %q", review.AIError)
	}
}

func TestAnalyze_RetriesRetryableErrors(t *testing.T) {
	shrinkBackoff(t)
	p := &scriptedProvider{
		response: discretionResponse,
		err:      &ai.RetryableError{StatusCode: 529, Message: "overloaded"},
		failures: 2,
	}
	r := newTestReviewer(t, p, nil, ReviewerConfig{})

	fs, err := r.Analyze(context.Background(), document.FromText("", agreementText), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(fs) != 1 || p.callCount() != 3 {
		t.Errorf("findings=%d calls=%d", len(fs), p.callCount())
	}
}

func TestAnalyze_GivesUpAfterMaxRetries(t *testing.T) {
	shrinkBackoff(t)
	p := &scriptedProvider{err: &ai.RetryableError{StatusCode: 503}, failures: -1}
	r := newTestReviewer(t, p, nil, ReviewerConfig{})

	fs, err := r.Analyze(context.Background(), document.FromText("", agreementText), nil)
	if err == nil || !IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	if fs != nil {
		t.Errorf("all chunks failed, expected no findings: %v", fs)
	}
	if p.callCount() != MaxRetries {
		t.Errorf("calls = %d, want %d", p.callCount(), MaxRetries)
	}
}

func TestAnalyze_ChunksMergeDuplicates(t *testing.T) {
	var paras []string
	for i := range 6 {
		para := "The parties agree to cooperate in good faith on every matter arising here."
		if i == 3 {
			para = "The Lender may amend the fee in its sole discretion at any time."
		}
		paras = append(paras, para)
	}
	doc := document.FromText("", strings.Join(paras, "\n\n"))

	p := &scriptedProvider{response: discretionResponse}
	r := newTestReviewer(t, p, nil, ReviewerConfig{ChunkTokens: 20})

	var mu sync.Mutex
	total, calls := 0, 0
	fs, err := r.Analyze(context.Background(), doc, func(done, n int) {
		mu.Lock()
		defer mu.Unlock()
		total = n
		calls++
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if total < 2 || calls != total {
		t.Fatalf("expected several chunks reported once each, total=%d calls=%d", total, calls)
	}
	if p.callCount() != total {
		t.Errorf("provider called %d times for %d chunks", p.callCount(), total)
	}
	if len(fs) != 1 || fs[0].ID != "AI-1" {
		t.Fatalf("duplicate findings should merge: %+v", fs)
	}
	start, end, ok := fs[0].Span()
	if !ok || doc.Text[start:end] != "sole discretion" {
		t.Errorf("merged finding not located in the document: %+v", fs[0])
	}
}

func TestAnalyze_NoProvider(t *testing.T) {
	r := newTestReviewer(t, nil, nil, ReviewerConfig{})
	if _, err := r.Analyze(context.Background(), document.FromText("", agreementText), nil); !errors.Is(err, ai.ErrNoProvider) {
		t.Errorf("expected ErrNoProvider, got %v", err)
	}
}

func TestPackKey(t *testing.T) {
	r := newTestReviewer(t, nil, nil, ReviewerConfig{DefaultPack: rules.PackClarity})
	if key, err := r.PackKey(""); err != nil || key != rules.PackClarity {
		t.Errorf("PackKey(\"\") = %q, %v", key, err)
	}
	if _, err := r.PackKey("nope"); !errors.Is(err, ErrUnknownPack) {
		t.Errorf("expected ErrUnknownPack, got %v", err)
	}
}
