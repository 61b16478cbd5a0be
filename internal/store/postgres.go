package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dgallion1/clausecheck/internal/finding"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS reviews (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	pack       TEXT NOT NULL,
	format     TEXT NOT NULL DEFAULT '',
	text       TEXT NOT NULL,
	findings   JSONB NOT NULL,
	high       INTEGER NOT NULL DEFAULT 0,
	medium     INTEGER NOT NULL DEFAULT 0,
	low        INTEGER NOT NULL DEFAULT 0,
	ai_error   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS reviews_created_idx ON reviews (created_at DESC);
CREATE TABLE IF NOT EXISTS resolved_findings (
	review_id   TEXT NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
	finding_id  TEXT NOT NULL,
	resolved_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (review_id, finding_id)
);`

// Postgres is the shared store for multi-instance deployments.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to connStr, pings, and ensures the schema.
func OpenPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create postgres schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Save(ctx context.Context, r *Review) error {
	body, err := encodeFindings(r.Findings)
	if err != nil {
		return err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	counts := finding.Count(r.Findings)
	_, err = p.pool.Exec(ctx, `
		INSERT INTO reviews (id, title, pack, format, text, findings, high, medium, low, ai_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, pack = EXCLUDED.pack, format = EXCLUDED.format,
			text = EXCLUDED.text, findings = EXCLUDED.findings,
			high = EXCLUDED.high, medium = EXCLUDED.medium, low = EXCLUDED.low,
			ai_error = EXCLUDED.ai_error`,
		r.ID, r.Title, r.Pack, r.Format, r.Text, string(body),
		counts.High, counts.Medium, counts.Low, r.AIError, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("save review %s: %w", r.ID, err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*Review, error) {
	r := &Review{ID: id}
	var body []byte
	err := p.pool.QueryRow(ctx, `
		SELECT title, pack, format, text, findings, ai_error, created_at
		FROM reviews WHERE id = $1`, id).
		Scan(&r.Title, &r.Pack, &r.Format, &r.Text, &body, &r.AIError, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review %s: %w", id, err)
	}
	if r.Findings, err = decodeFindings(body); err != nil {
		return nil, err
	}
	r.Counts = finding.Count(r.Findings)

	rows, err := p.pool.Query(ctx,
		`SELECT finding_id FROM resolved_findings WHERE review_id = $1 ORDER BY resolved_at, finding_id`, id)
	if err != nil {
		return nil, fmt.Errorf("get resolved findings: %w", err)
	}
	r.Resolved, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan resolved findings: %w", err)
	}
	return r, nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT r.id, r.title, r.pack, r.high, r.medium, r.low, r.created_at,
			(SELECT COUNT(*) FROM resolved_findings rf WHERE rf.review_id = r.id)
		FROM reviews r
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $1`, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sm Summary
		var resolved int64
		if err := rows.Scan(&sm.ID, &sm.Title, &sm.Pack,
			&sm.Counts.High, &sm.Counts.Medium, &sm.Counts.Low, &sm.CreatedAt, &resolved); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		sm.Resolved = int(resolved)
		sm.Counts.Total = sm.Counts.High + sm.Counts.Medium + sm.Counts.Low
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (p *Postgres) Resolve(ctx context.Context, reviewID, findingID string) error {
	r, err := p.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	if !r.HasFinding(findingID) {
		return ErrNotFound
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO resolved_findings (review_id, finding_id)
		VALUES ($1, $2)
		ON CONFLICT (review_id, finding_id) DO NOTHING`, reviewID, findingID)
	if err != nil {
		return fmt.Errorf("resolve finding %s: %w", findingID, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
