package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/clausecheck/internal/ai"
	"github.com/dgallion1/clausecheck/internal/chunker"
	"github.com/dgallion1/clausecheck/internal/document"
	"github.com/dgallion1/clausecheck/internal/finding"
	"github.com/dgallion1/clausecheck/internal/rules"
	"github.com/dgallion1/clausecheck/internal/store"
)

// ErrUnknownPack is returned for a review request naming no known rule pack.
var ErrUnknownPack = errors.New("unknown rule pack")

// Request is a synchronous review of already-extracted text.
type Request struct {
	Title string
	Text  string
	Pack  string // empty selects the default pack
	AI    bool

	// Document, when set, supplies section structure for AI chunking. Its
	// Text takes precedence over Text.
	Document *document.Document
}

// Reviewer combines the rule engine, the optional AI layer and review storage.
type Reviewer struct {
	engine          *rules.Engine
	analyzer        *ai.Analyzer
	store           store.Store
	log             *slog.Logger
	chunkCfg        chunker.Config
	maxConcurrentAI int
	defaultPack     string
}

// ReviewerConfig holds the tunables of a Reviewer.
type ReviewerConfig struct {
	DefaultPack     string
	ChunkTokens     int
	MaxConcurrentAI int
}

// NewReviewer wires a reviewer. analyzer and st may be nil: reviews then skip
// AI analysis and are not persisted.
func NewReviewer(engine *rules.Engine, analyzer *ai.Analyzer, st store.Store, log *slog.Logger, cfg ReviewerConfig) *Reviewer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if cfg.DefaultPack == "" {
		cfg.DefaultPack = rules.PackCore
	}
	if cfg.MaxConcurrentAI <= 0 {
		cfg.MaxConcurrentAI = 3
	}
	chunkCfg := chunker.DefaultConfig()
	if cfg.ChunkTokens > 0 {
		chunkCfg.ChunkSize = cfg.ChunkTokens
	}
	return &Reviewer{
		engine:          engine,
		analyzer:        analyzer,
		store:           st,
		log:             log,
		chunkCfg:        chunkCfg,
		maxConcurrentAI: cfg.MaxConcurrentAI,
		defaultPack:     cfg.DefaultPack,
	}
}

// Analyzer returns the AI analyzer, which may be disabled.
func (r *Reviewer) Analyzer() *ai.Analyzer { return r.analyzer }

// Store returns the review store, or nil.
func (r *Reviewer) Store() store.Store { return r.store }

// PackKey resolves an empty key to the default pack and checks it exists.
func (r *Reviewer) PackKey(key string) (string, error) {
	if key == "" {
		key = r.defaultPack
	}
	if _, ok := rules.LookupPack(key); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPack, key)
	}
	return key, nil
}

// Check runs the deterministic rules of pack over text.
func (r *Reviewer) Check(text, pack string) []finding.Finding {
	return r.engine.RunPack(text, pack)
}

// ReviewText runs a complete review and saves it when a store is configured.
// AI failures do not fail the review: rule findings are kept and the error is
// recorded on the review.
func (r *Reviewer) ReviewText(ctx context.Context, req Request) (*store.Review, error) {
	pack, err := r.PackKey(req.Pack)
	if err != nil {
		return nil, err
	}
	doc := req.Document
	if doc == nil {
		doc = document.FromText(req.Title, req.Text)
	}
	title := req.Title
	if title == "" {
		title = doc.Title
	}

	review := &store.Review{
		ID:        NewID(),
		Title:     title,
		Pack:      pack,
		Format:    doc.Format,
		Text:      doc.Text,
		CreatedAt: time.Now().UTC(),
	}
	log := r.log.With("review_id", review.ID, "pack", pack)

	review.Findings = r.Check(doc.Text, pack)
	ruleCount := len(review.Findings)

	if req.AI {
		aiFindings, err := r.Analyze(ctx, doc, nil)
		if err != nil {
			log.Warn("ai analysis incomplete", "error", err)
			review.AIError = err.Error()
		}
		review.Findings = append(review.Findings, aiFindings...)
	}
	if review.Findings == nil {
		review.Findings = []finding.Finding{}
	}
	review.Counts = finding.Count(review.Findings)

	if err := r.Save(ctx, review); err != nil {
		return nil, err
	}
	log.Info("review complete", "rule_findings", ruleCount, "ai_findings", len(review.Findings)-ruleCount)
	return review, nil
}

// Save persists a review if a store is configured.
func (r *Reviewer) Save(ctx context.Context, review *store.Review) error {
	if r.store == nil {
		return nil
	}
	if err := r.store.Save(ctx, review); err != nil {
		return fmt.Errorf("store review: %w", err)
	}
	return nil
}

// Analyze runs the AI layer over doc, chunking large documents and analyzing
// chunks concurrently with retries. onChunk, if set, is called once per
// finished chunk with the total chunk count. Findings from overlapping chunks
// are merged, located in doc.Text and numbered AI-1.. in document order.
//
// When some chunks fail the returned error joins their errors and the
// findings of the other chunks are still returned.
func (r *Reviewer) Analyze(ctx context.Context, doc *document.Document, onChunk func(done, total int)) ([]finding.Finding, error) {
	if !r.analyzer.Enabled() {
		return nil, ai.ErrNoProvider
	}
	chunks := chunker.Split(doc, r.chunkCfg)
	if len(chunks) == 0 {
		return nil, nil
	}

	type chunkResult struct {
		findings []finding.Finding
		err      error
	}
	results := make([]chunkResult, len(chunks))
	sem := make(chan struct{}, r.maxConcurrentAI)
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0

	for i, chunk := range chunks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, chunk chunker.Chunk) {
			defer wg.Done()
			defer func() { <-sem }()
			fs, err := r.analyzeChunk(ctx, chunk)
			results[i] = chunkResult{findings: fs, err: err}
			if onChunk != nil {
				mu.Lock()
				done++
				onChunk(done, len(chunks))
				mu.Unlock()
			}
		}(i, chunk)
	}
	wg.Wait()

	var out []finding.Finding
	var errs []error
	seen := make(map[string]bool)
	for i, res := range results {
		if res.err != nil {
			r.log.Error("chunk analysis failed", "chunk", i, "error", res.err)
			errs = append(errs, fmt.Errorf("chunk %d: %w", i, res.err))
			continue
		}
		for _, f := range res.findings {
			ai.Locate(&f, doc.Text, chunks[i].Start)
			key := strings.ToLower(f.RuleTitle) + "\x00" + f.MatchedText
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, f)
		}
	}
	ai.Number(out, 1)

	if len(errs) == len(chunks) {
		return nil, errors.Join(errs...)
	}
	return out, errors.Join(errs...)
}

func (r *Reviewer) analyzeChunk(ctx context.Context, chunk chunker.Chunk) ([]finding.Finding, error) {
	var fs []finding.Finding
	var lastErr error
	for attempt := range MaxRetries {
		fs, lastErr = r.analyzer.AnalyzeSection(ctx, chunk.Breadcrumb, chunk.Text)
		if lastErr == nil || !IsRetryable(lastErr) || attempt == MaxRetries-1 {
			break
		}
		r.log.Warn("retryable ai error", "chunk", chunk.Index, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return fs, lastErr
}
