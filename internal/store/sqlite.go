package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dgallion1/clausecheck/internal/finding"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS reviews (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	pack       TEXT NOT NULL,
	format     TEXT NOT NULL DEFAULT '',
	text       TEXT NOT NULL,
	findings   TEXT NOT NULL,
	high       INTEGER NOT NULL DEFAULT 0,
	medium     INTEGER NOT NULL DEFAULT 0,
	low        INTEGER NOT NULL DEFAULT 0,
	ai_error   TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS reviews_created_idx ON reviews (created_at);
CREATE TABLE IF NOT EXISTS resolved_findings (
	review_id   TEXT NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
	finding_id  TEXT NOT NULL,
	resolved_at DATETIME NOT NULL,
	PRIMARY KEY (review_id, finding_id)
);`

// SQLite is the single-node store backed by database/sql and go-sqlite3.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. ":memory:" is
// accepted for tests.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, r *Review) error {
	body, err := encodeFindings(r.Findings)
	if err != nil {
		return err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	counts := finding.Count(r.Findings)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, title, pack, format, text, findings, high, medium, low, ai_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, pack = excluded.pack, format = excluded.format,
			text = excluded.text, findings = excluded.findings,
			high = excluded.high, medium = excluded.medium, low = excluded.low,
			ai_error = excluded.ai_error`,
		r.ID, r.Title, r.Pack, r.Format, r.Text, string(body),
		counts.High, counts.Medium, counts.Low, r.AIError, r.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("save review %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*Review, error) {
	r := &Review{ID: id}
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT title, pack, format, text, findings, ai_error, created_at
		FROM reviews WHERE id = ?`, id).
		Scan(&r.Title, &r.Pack, &r.Format, &r.Text, &body, &r.AIError, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review %s: %w", id, err)
	}
	if r.Findings, err = decodeFindings([]byte(body)); err != nil {
		return nil, err
	}
	r.Counts = finding.Count(r.Findings)

	rows, err := s.db.QueryContext(ctx,
		`SELECT finding_id FROM resolved_findings WHERE review_id = ? ORDER BY resolved_at, finding_id`, id)
	if err != nil {
		return nil, fmt.Errorf("get resolved findings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var fid string
		if err := rows.Scan(&fid); err != nil {
			return nil, fmt.Errorf("scan resolved finding: %w", err)
		}
		r.Resolved = append(r.Resolved, fid)
	}
	return r, rows.Err()
}

func (s *SQLite) List(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.title, r.pack, r.high, r.medium, r.low, r.created_at,
			(SELECT COUNT(*) FROM resolved_findings rf WHERE rf.review_id = r.id)
		FROM reviews r
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ?`, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.Title, &sm.Pack,
			&sm.Counts.High, &sm.Counts.Medium, &sm.Counts.Low, &sm.CreatedAt, &sm.Resolved); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		sm.Counts.Total = sm.Counts.High + sm.Counts.Medium + sm.Counts.Low
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (s *SQLite) Resolve(ctx context.Context, reviewID, findingID string) error {
	r, err := s.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	if !r.HasFinding(findingID) {
		return ErrNotFound
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resolved_findings (review_id, finding_id, resolved_at)
		VALUES (?, ?, ?)
		ON CONFLICT(review_id, finding_id) DO NOTHING`,
		reviewID, findingID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("resolve finding %s: %w", findingID, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
