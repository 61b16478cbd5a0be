package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/clausecheck/internal/ai"
	"github.com/dgallion1/clausecheck/internal/finding"
	"github.com/dgallion1/clausecheck/internal/parser"
	"github.com/dgallion1/clausecheck/internal/store"
)

// Worker processes a single upload review job.
type Worker struct {
	reviewer   *Reviewer
	log        *slog.Logger
	parserOpts parser.Options
}

func NewWorker(reviewer *Reviewer, log *slog.Logger, parserOpts parser.Options) *Worker {
	return &Worker{
		reviewer:   reviewer,
		log:        log,
		parserOpts: parserOpts,
	}
}

// Process runs parse, check, analyze and store for a job, leaving it in a
// terminal status.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename, "pack", job.Pack)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parserOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	job.releaseFileData()
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title != "" {
		doc.Title = job.Title
	}
	job.SetContentHash(ContentHashHex([]byte(doc.Text)))
	log.Info("parsed document", "bytes", len(doc.Text), "sections", len(doc.Sections), "pages", len(doc.Pages))

	// Phase 2: Deterministic rules
	job.SetStatus(StatusChecking, "checking")
	pack, err := w.reviewer.PackKey(job.Pack)
	if err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "checking")
		return
	}
	findings := w.reviewer.Check(doc.Text, pack)
	ruleCount := len(findings)
	job.SetFindings(ruleCount, 0, finding.Count(findings))

	review := &store.Review{
		ID:     NewID(),
		Title:  doc.Title,
		Pack:   pack,
		Format: doc.Format,
		Text:   doc.Text,
	}

	// Phase 3: AI analysis
	hadErrors := false
	if job.AI {
		job.SetStatus(StatusAnalyzing, "analyzing")
		aiFindings, err := w.reviewer.Analyze(ctx, doc, func(done, total int) {
			job.SetTotalChunks(total)
			job.IncrChunksProcessed()
		})
		if err != nil {
			hadErrors = true
			review.AIError = err.Error()
			job.AddError(fmt.Sprintf("ai: %s", err))
			if errors.Is(err, ai.ErrNoProvider) {
				log.Warn("ai requested but no provider configured")
			} else {
				log.Error("ai analysis incomplete", "error", err)
			}
		}
		findings = append(findings, aiFindings...)
		job.SetFindings(ruleCount, len(aiFindings), finding.Count(findings))
	}
	if findings == nil {
		findings = []finding.Finding{}
	}
	review.Findings = findings
	review.Counts = finding.Count(findings)

	// Phase 4: Store
	job.SetStatus(StatusStoring, "storing")
	if err := w.reviewer.Save(ctx, review); err != nil {
		log.Error("store failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "storing")
		return
	}
	job.SetReviewID(review.ID)
	log.Info("review stored", "review_id", review.ID, "findings", len(findings))

	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}
