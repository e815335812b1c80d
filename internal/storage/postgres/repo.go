// Package postgres implements the run report repository on PostgreSQL via
// pgx connection pooling.
package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dataprof/internal/storage"
)

// Repo implements storage.Repository for Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() { r.pool.Close() }

func (r *Repo) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS runs (
	id UUID PRIMARY KEY,
	dataset TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	sector TEXT NOT NULL,
	rows_before BIGINT NOT NULL,
	rows_after BIGINT NOT NULL,
	duplicates_removed BIGINT NOT NULL,
	missing_pct DOUBLE PRECISION NOT NULL,
	avg_correlation DOUBLE PRECISION NOT NULL,
	cleaning_log JSONB
)`
	_, err := r.pool.Exec(ctx, ddl)
	return err
}

func (r *Repo) SaveRun(ctx context.Context, rep storage.RunReport) error {
	const q = `
INSERT INTO runs
	(id, dataset, created_at, sector, rows_before, rows_after,
	 duplicates_removed, missing_pct, avg_correlation, cleaning_log)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q,
		rep.ID, rep.Dataset, rep.CreatedAt.UTC(), rep.Sector,
		rep.RowsBefore, rep.RowsAfter, rep.DuplicatesRemoved,
		rep.MissingPct, rep.AvgCorrelation, rep.CleaningLog)
	return err
}

func (r *Repo) GetRun(ctx context.Context, id uuid.UUID) (storage.RunReport, error) {
	const q = `
SELECT id, dataset, created_at, sector, rows_before, rows_after,
       duplicates_removed, missing_pct, avg_correlation, cleaning_log
FROM runs WHERE id = $1`
	var rep storage.RunReport
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&rep.ID, &rep.Dataset, &rep.CreatedAt, &rep.Sector,
		&rep.RowsBefore, &rep.RowsAfter, &rep.DuplicatesRemoved,
		&rep.MissingPct, &rep.AvgCorrelation, &rep.CleaningLog)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.RunReport{}, storage.ErrNotFound
	}
	return rep, err
}

func (r *Repo) ListRuns(ctx context.Context, limit int) ([]storage.RunReport, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, dataset, created_at, sector, rows_before, rows_after,
       duplicates_removed, missing_pct, avg_correlation
FROM runs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.RunReport
	for rows.Next() {
		var rep storage.RunReport
		if err := rows.Scan(&rep.ID, &rep.Dataset, &rep.CreatedAt, &rep.Sector,
			&rep.RowsBefore, &rep.RowsAfter, &rep.DuplicatesRemoved,
			&rep.MissingPct, &rep.AvgCorrelation); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}
