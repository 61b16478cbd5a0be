// Package store keeps review history: the reviewed text, its findings and
// which findings a reviewer has marked resolved.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgallion1/clausecheck/internal/config"
	"github.com/dgallion1/clausecheck/internal/finding"
)

// ErrNotFound is returned for an unknown review, or an unknown finding id
// within a review.
var ErrNotFound = errors.New("not found")

// Review is one completed review of one document.
type Review struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Pack      string            `json:"pack"`
	Format    string            `json:"format,omitempty"`
	Text      string            `json:"text"`
	Findings  []finding.Finding `json:"findings"`
	Counts    finding.Counts    `json:"counts"`
	Resolved  []string          `json:"resolved,omitempty"`
	AIError   string            `json:"aiError,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// ResolvedSet returns Resolved as a lookup for finding.Filter.
func (r *Review) ResolvedSet() map[string]bool {
	set := make(map[string]bool, len(r.Resolved))
	for _, id := range r.Resolved {
		set[id] = true
	}
	return set
}

// HasFinding reports whether id names one of the review's findings.
func (r *Review) HasFinding(id string) bool {
	for _, f := range r.Findings {
		if f.ID == id {
			return true
		}
	}
	return false
}

// Summary is a review listing row.
type Summary struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Pack      string         `json:"pack"`
	Counts    finding.Counts `json:"counts"`
	Resolved  int            `json:"resolved"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Store persists reviews.
type Store interface {
	Save(ctx context.Context, r *Review) error
	Get(ctx context.Context, id string) (*Review, error)
	// List returns the most recent reviews first.
	List(ctx context.Context, limit int) ([]Summary, error)
	Resolve(ctx context.Context, reviewID, findingID string) error
	Close() error
}

// Open connects the store selected by cfg.StoreDriver and ensures its schema.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case "sqlite", "":
		return OpenSQLite(ctx, cfg.SQLitePath)
	case "postgres":
		return OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

const defaultListLimit = 50

func listLimit(n int) int {
	if n <= 0 || n > 500 {
		return defaultListLimit
	}
	return n
}

func encodeFindings(fs []finding.Finding) ([]byte, error) {
	if fs == nil {
		fs = []finding.Finding{}
	}
	b, err := json.Marshal(fs)
	if err != nil {
		return nil, fmt.Errorf("encode findings: %w", err)
	}
	return b, nil
}

func decodeFindings(b []byte) ([]finding.Finding, error) {
	var fs []finding.Finding
	if len(b) == 0 {
		return fs, nil
	}
	if err := json.Unmarshal(b, &fs); err != nil {
		return nil, fmt.Errorf("decode findings: %w", err)
	}
	return fs, nil
}
