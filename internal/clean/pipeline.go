// Package clean implements the data cleaning pipeline: column-name
// normalization, missing-value imputation, exact-duplicate elimination, and
// percentile outlier capping, orchestrated in a fixed order.
//
// Design constraints inherited from the rest of the system:
//   - Stages are pure over their input table: each returns a new Table and
//     never mutates the one it was given.
//   - Per-column failures are recoverable: they become cleaning log entries
//     and the run continues for every other column.
//   - Only a genuinely empty input is a hard stop (ErrNoData).
package clean

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"dataprof/internal/classify"
	"dataprof/internal/table"
)

// ErrNoData is returned when the input table is nil, has no columns, or has
// no rows. Upstream file loading may legitimately produce no usable table, so
// this is a signal, not a panic.
var ErrNoData = errors.New("clean: no data")

// Result is the outcome of one orchestrator run.
type Result struct {
	// Table is the cleaned table.
	Table *table.Table

	// Log is the ordered record of every action taken during the run.
	Log Log

	// Fills holds one record per column that had missing values imputed.
	Fills []FillRecord

	// Renames lists column-name collisions resolved by the normalizer.
	Renames []Rename

	RowsBefore        int
	RowsAfter         int
	DuplicatesRemoved int

	// DatetimeColumns lists textual columns converted to datetime storage
	// before imputation.
	DatetimeColumns []string
}

// Pipeline runs the cleaning stages in their contractual order.
type Pipeline struct {
	logger *zap.Logger
}

// New returns a Pipeline. A nil logger is replaced with a no-op logger.
func New(logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{logger: logger}
}

// Run executes normalize → datetime detection → impute → dedupe → cap.
//
// The order is a contract, not an accident:
//   - datetime detection precedes imputation so date columns get
//     forward-fill rather than mode fill;
//   - imputation precedes capping so percentiles are computed on complete
//     columns;
//   - duplicate elimination precedes capping so capped statistics are not
//     skewed by duplicate rows.
//
// The context is checked between stages; on cancellation the partial table is
// discarded and ctx.Err() is returned.
func (p *Pipeline) Run(ctx context.Context, t *table.Table) (*Result, error) {
	if t.Empty() {
		return nil, ErrNoData
	}

	res := &Result{RowsBefore: t.NumRows()}

	// Stage 1: column names.
	cur, renames := NormalizeColumns(t)
	res.Renames = renames
	for _, r := range renames {
		res.Log.Warnf("normalize", r.Final, "column name collision: %q normalized to %q, renamed to %q",
			r.Original, r.Normalized, r.Final)
	}
	if len(renames) > 0 {
		p.logger.Warn("column name collisions resolved", zap.Int("count", len(renames)))
	}
	if err := stageDone(ctx); err != nil {
		return nil, err
	}

	// Stage 2: datetime detection on textual columns.
	cur, converted := classify.DetectDatetimes(cur)
	res.DatetimeColumns = converted
	for _, name := range converted {
		res.Log.Infof("datetime", name, "textual column parsed as datetime")
	}
	if err := stageDone(ctx); err != nil {
		return nil, err
	}

	// Stage 3: missing values.
	cur, fills, implog := ImputeMissing(cur)
	res.Fills = fills
	res.Log = append(res.Log, implog...)
	if err := stageDone(ctx); err != nil {
		return nil, err
	}

	// Stage 4: exact duplicates.
	cur, removed := Deduplicate(cur)
	res.DuplicatesRemoved = removed
	if removed > 0 {
		res.Log.Infof("dedupe", "", "removed %d exact duplicate row(s)", removed)
	}
	if err := stageDone(ctx); err != nil {
		return nil, err
	}

	// Stage 5: outlier capping.
	cur, caplog := CapOutliers(cur)
	res.Log = append(res.Log, caplog...)

	res.Table = cur
	res.RowsAfter = cur.NumRows()

	p.logger.Info("cleaning complete",
		zap.Int("rows_before", res.RowsBefore),
		zap.Int("rows_after", res.RowsAfter),
		zap.Int("duplicates_removed", res.DuplicatesRemoved),
		zap.Int("columns", cur.NumCols()),
		zap.Int("fills", len(fills)),
	)
	return res, nil
}

func stageDone(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Summary renders the cleaning log as human-readable lines, one per action.
func (l Log) Summary() string {
	var b strings.Builder
	for _, a := range l {
		b.WriteString(string(a.Severity))
		b.WriteString("\t")
		b.WriteString(a.Stage)
		if a.Column != "" {
			b.WriteString("\t")
			b.WriteString(a.Column)
		}
		b.WriteString("\t")
		b.WriteString(a.Detail)
		b.WriteString("\n")
	}
	return b.String()
}
