// Package mssql implements the run report repository on Microsoft SQL
// Server.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/microsoft/go-mssqldb"

	"dataprof/internal/storage"
)

// Repo implements storage.Repository for SQL Server.
//
// Idempotent saves use IF NOT EXISTS rather than MERGE: the run table is
// append-only and the simpler form avoids MERGE's locking surprises.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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
IF NOT EXISTS (SELECT 1 FROM sys.tables WHERE name = 'runs')
CREATE TABLE runs (
	id UNIQUEIDENTIFIER PRIMARY KEY,
	dataset NVARCHAR(400) NOT NULL,
	created_at DATETIMEOFFSET NOT NULL,
	sector NVARCHAR(100) NOT NULL,
	rows_before BIGINT NOT NULL,
	rows_after BIGINT NOT NULL,
	duplicates_removed BIGINT NOT NULL,
	missing_pct FLOAT NOT NULL,
	avg_correlation FLOAT NOT NULL,
	cleaning_log VARBINARY(MAX)
)`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *Repo) SaveRun(ctx context.Context, rep storage.RunReport) error {
	const q = `
IF NOT EXISTS (SELECT 1 FROM runs WHERE id = @p1)
INSERT INTO runs
	(id, dataset, created_at, sector, rows_before, rows_after,
	 duplicates_removed, missing_pct, avg_correlation, cleaning_log)
VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8, @p9, @p10)`
	_, err := r.db.ExecContext(ctx, q,
		rep.ID.String(), rep.Dataset, rep.CreatedAt.UTC(), rep.Sector,
		rep.RowsBefore, rep.RowsAfter, rep.DuplicatesRemoved,
		rep.MissingPct, rep.AvgCorrelation, rep.CleaningLog)
	return err
}

func (r *Repo) GetRun(ctx context.Context, id uuid.UUID) (storage.RunReport, error) {
	const q = `
SELECT id, dataset, created_at, sector, rows_before, rows_after,
       duplicates_removed, missing_pct, avg_correlation, cleaning_log
FROM runs WHERE id = @p1`
	var rep storage.RunReport
	var rawID string
	var created time.Time
	err := r.db.QueryRowContext(ctx, q, id.String()).Scan(
		&rawID, &rep.Dataset, &created, &rep.Sector,
		&rep.RowsBefore, &rep.RowsAfter, &rep.DuplicatesRemoved,
		&rep.MissingPct, &rep.AvgCorrelation, &rep.CleaningLog)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.RunReport{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.RunReport{}, err
	}
	parsed, err := uuid.Parse(rawID)
	if err != nil {
		return storage.RunReport{}, err
	}
	rep.ID = parsed
	rep.CreatedAt = created
	return rep, nil
}

func (r *Repo) ListRuns(ctx context.Context, limit int) ([]storage.RunReport, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT TOP (@p1) id, dataset, created_at, sector, rows_before, rows_after,
       duplicates_removed, missing_pct, avg_correlation
FROM runs ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.RunReport
	for rows.Next() {
		var rep storage.RunReport
		var rawID string
		if err := rows.Scan(&rawID, &rep.Dataset, &rep.CreatedAt, &rep.Sector,
			&rep.RowsBefore, &rep.RowsAfter, &rep.DuplicatesRemoved,
			&rep.MissingPct, &rep.AvgCorrelation); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(rawID)
		if err != nil {
			return nil, err
		}
		rep.ID = parsed
		out = append(out, rep)
	}
	return out, rows.Err()
}
