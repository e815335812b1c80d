// Package sqlite implements the run report repository on SQLite via the
// modernc.org pure-Go driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"dataprof/internal/storage"
)

// Repo implements storage.Repository for SQLite.
//
// SQLite has no native timestamp type; CreatedAt is stored as a fixed-width
// RFC3339 string with zero-padded nanoseconds. The padding matters: ListRuns
// orders lexicographically on this column, and the variable-width
// RFC3339Nano form misorders timestamps within the same second.
type Repo struct {
	db *sql.DB
}

// timeLayout is RFC3339 with all nine fraction digits kept, so every stored
// UTC timestamp has the same width and string order equals time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	dataset TEXT NOT NULL,
	created_at TEXT NOT NULL,
	sector TEXT NOT NULL,
	rows_before INTEGER NOT NULL,
	rows_after INTEGER NOT NULL,
	duplicates_removed INTEGER NOT NULL,
	missing_pct REAL NOT NULL,
	avg_correlation REAL NOT NULL,
	cleaning_log BLOB
)`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *Repo) SaveRun(ctx context.Context, rep storage.RunReport) error {
	const q = `
INSERT OR IGNORE INTO runs
	(id, dataset, created_at, sector, rows_before, rows_after,
	 duplicates_removed, missing_pct, avg_correlation, cleaning_log)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		rep.ID.String(), rep.Dataset,
		rep.CreatedAt.UTC().Format(timeLayout),
		rep.Sector, rep.RowsBefore, rep.RowsAfter,
		rep.DuplicatesRemoved, rep.MissingPct, rep.AvgCorrelation,
		rep.CleaningLog)
	return err
}

func (r *Repo) GetRun(ctx context.Context, id uuid.UUID) (storage.RunReport, error) {
	const q = `
SELECT id, dataset, created_at, sector, rows_before, rows_after,
       duplicates_removed, missing_pct, avg_correlation, cleaning_log
FROM runs WHERE id = ?`
	rep, err := scanRun(r.db.QueryRowContext(ctx, q, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
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
       duplicates_removed, missing_pct, avg_correlation, NULL
FROM runs ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.RunReport
	for rows.Next() {
		rep, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (storage.RunReport, error) {
	var rep storage.RunReport
	var id, created string
	if err := row.Scan(&id, &rep.Dataset, &created, &rep.Sector,
		&rep.RowsBefore, &rep.RowsAfter, &rep.DuplicatesRemoved,
		&rep.MissingPct, &rep.AvgCorrelation, &rep.CleaningLog); err != nil {
		return storage.RunReport{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return storage.RunReport{}, err
	}
	rep.ID = parsed
	ts, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return storage.RunReport{}, err
	}
	rep.CreatedAt = ts
	return rep, nil
}
