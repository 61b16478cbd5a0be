package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/clausecheck/internal/config"
	"github.com/dgallion1/clausecheck/internal/parser"
)

// JobObserver is told about queue depth and finished jobs.
type JobObserver interface {
	JobFinished(status string)
	SetQueueDepth(n int)
}

// Orchestrator manages the upload review pipeline.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	reviewer *Reviewer
	log      *slog.Logger
	cfg      config.Config
	observer JobObserver

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers. obs may
// be nil.
func NewOrchestrator(cfg config.Config, reviewer *Reviewer, log *slog.Logger, obs JobObserver) *Orchestrator {
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		reviewer: reviewer,
		log:      log,
		cfg:      cfg,
		observer: obs,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	opts := parser.Options{PDFFallbackPdftotext: o.cfg.PDFFallbackPdftotext}
	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.reviewer, o.log, opts)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.reportDepth()
					w.Process(workerCtx, job)
					if o.observer != nil {
						o.observer.JobFinished(string(job.Snapshot().Status))
					}
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		o.reportDepth()
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		if o.observer != nil {
			o.observer.JobFinished(string(StatusFailed))
		}
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Reviewer returns the reviewer for synchronous use by API handlers.
func (o *Orchestrator) Reviewer() *Reviewer {
	return o.reviewer
}

func (o *Orchestrator) reportDepth() {
	if o.observer != nil {
		o.observer.SetQueueDepth(len(o.queue))
	}
}
