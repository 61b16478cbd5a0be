package rules

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/clausecheck/internal/finding"
)

// RunRules applies rules in order and concatenates their findings. A rule
// that panics takes the whole run down with it; use Engine when one bad rule
// must not abort a scan.
func RunRules(text string, rules []Rule) []finding.Finding {
	var out []finding.Finding
	for _, r := range rules {
		out = append(out, r.Run(text)...)
	}
	return out
}

// Observer receives per-rule results from an Engine.
type Observer interface {
	ObserveRule(ruleID string, findings []finding.Finding, elapsed time.Duration)
	RulePanicked(ruleID string)
}

// Engine runs rules with per-rule isolation: a panicking rule is logged,
// reported to the observer and skipped.
type Engine struct {
	log *slog.Logger
	obs Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver attaches an Observer (typically metrics).
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.obs = o }
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(log *slog.Logger, opts ...Option) *Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	e := &Engine{log: log}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run applies rules in order, skipping any rule that panics.
func (e *Engine) Run(text string, rules []Rule) []finding.Finding {
	var out []finding.Finding
	for _, r := range rules {
		start := time.Now()
		found, err := runIsolated(r, text)
		if err != nil {
			e.log.Error("rule failed, skipping", "rule_id", r.ID(), "error", err)
			if e.obs != nil {
				e.obs.RulePanicked(r.ID())
			}
			continue
		}
		if e.obs != nil {
			e.obs.ObserveRule(r.ID(), found, time.Since(start))
		}
		out = append(out, found...)
	}
	return out
}

// RunPack resolves key and runs its rules. An unknown key yields no findings.
func (e *Engine) RunPack(text, key string) []finding.Finding {
	rules := Resolve(key)
	if len(rules) == 0 {
		e.log.Warn("unknown rule pack", "pack", key)
		return nil
	}
	return e.Run(text, rules)
}

func runIsolated(r Rule, text string) (found []finding.Finding, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("rule %s panicked: %v", r.ID(), p)
		}
	}()
	return r.Run(text), nil
}
