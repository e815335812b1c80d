// Package profile ties the cleaning pipeline, type classification, and
// categorical encoding into a single entry point and computes summary quality
// metrics over the cleaned result.
package profile

import (
	"context"
	"math"

	"go.uber.org/zap"

	"dataprof/internal/classify"
	"dataprof/internal/clean"
	"dataprof/internal/encode"
	"dataprof/internal/stats"
	"dataprof/internal/table"
)

// Metrics summarizes data quality after cleaning.
type Metrics struct {
	// MissingPct is the share of cells still missing after imputation, in
	// percent of all cells. Nonzero only when a column could not be filled.
	MissingPct float64 `json:"missing_pct"`

	// DuplicateCount is the number of exact duplicate rows removed.
	DuplicateCount int `json:"duplicate_count"`

	// AvgCorrelation is the mean absolute pairwise Pearson correlation over
	// the numerical columns. Zero when fewer than two numerical columns
	// exist or no pair has computable correlation.
	AvgCorrelation float64 `json:"avg_correlation"`
}

// Result is the complete output of one clean-and-profile run.
type Result struct {
	// Cleaned is the table after all cleaning stages, before encoding.
	Cleaned *table.Table `json:"-"`

	// Encoded is Cleaned with every Encode column replaced by integer
	// codes.
	Encoded *table.Table `json:"-"`

	Log            clean.Log                  `json:"cleaning_log"`
	Fills          []clean.FillRecord         `json:"fills,omitempty"`
	Renames        []clean.Rename             `json:"renames,omitempty"`
	Classification classify.Classification    `json:"classification"`
	Mappings       map[string]*encode.Mapping `json:"-"`
	Metrics        Metrics                    `json:"metrics"`

	RowsBefore        int `json:"rows_before"`
	RowsAfter         int `json:"rows_after"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}

// ErrNoData mirrors the pipeline sentinel so callers can test against either
// package.
var ErrNoData = clean.ErrNoData

// CleanAndProfile runs the full pipeline over t: clean, classify, encode, and
// profile. The input table is never modified. Returns ErrNoData for an empty
// input and ctx.Err() on cancellation; per-column trouble surfaces in the
// cleaning log instead of failing the run.
func CleanAndProfile(ctx context.Context, logger *zap.Logger, t *table.Table) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pres, err := clean.New(logger).Run(ctx, t)
	if err != nil {
		return nil, err
	}

	cls := classify.Classify(pres.Table)

	encoded, mappings, err := encode.Columns(pres.Table, cls.Encode)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Cleaned:           pres.Table,
		Encoded:           encoded,
		Log:               pres.Log,
		Fills:             pres.Fills,
		Renames:           pres.Renames,
		Classification:    cls,
		Mappings:          mappings,
		RowsBefore:        pres.RowsBefore,
		RowsAfter:         pres.RowsAfter,
		DuplicatesRemoved: pres.DuplicatesRemoved,
	}
	res.Metrics = Metrics{
		MissingPct:     missingPct(pres.Table),
		DuplicateCount: pres.DuplicatesRemoved,
		AvgCorrelation: avgCorrelation(pres.Table, cls.Numerical),
	}

	logger.Info("profile complete",
		zap.Int("numerical", len(cls.Numerical)),
		zap.Int("categorical", len(cls.Categorical)),
		zap.Int("datetime", len(cls.Datetime)),
		zap.Int("encoded", len(cls.Encode)),
		zap.Float64("missing_pct", res.Metrics.MissingPct),
		zap.Float64("avg_correlation", res.Metrics.AvgCorrelation),
	)
	return res, nil
}

// missingPct is the share of missing cells across the whole table, in
// percent. The pipeline rejects empty input before this runs, so the cell
// count is nonzero in practice.
func missingPct(t *table.Table) float64 {
	total := t.NumRows() * t.NumCols()
	if total == 0 {
		return 0
	}
	missing := 0
	for i := range t.Columns {
		missing += t.Columns[i].MissingCount()
	}
	return 100 * float64(missing) / float64(total)
}

// avgCorrelation computes the mean absolute pairwise Pearson correlation over
// the named numerical columns. Pairs with undefined correlation (constant
// columns, fewer than two jointly observed rows) are skipped rather than
// counted as zero.
func avgCorrelation(t *table.Table, numerical []string) float64 {
	if len(numerical) < 2 {
		return 0
	}
	var sum float64
	var n int
	for i := 0; i < len(numerical); i++ {
		for j := i + 1; j < len(numerical); j++ {
			r, ok := pairCorrelation(t, numerical[i], numerical[j])
			if !ok {
				continue
			}
			sum += math.Abs(r)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func pairCorrelation(t *table.Table, a, b string) (float64, bool) {
	ca, cb := t.Col(a), t.Col(b)
	if ca == nil || cb == nil {
		return 0, false
	}
	xa, rowsA := ca.Float64s()
	xb, rowsB := cb.Float64s()

	// Align on rows where both columns have a value.
	inA := make(map[int]float64, len(xa))
	for k, row := range rowsA {
		inA[row] = xa[k]
	}
	var xs, ys []float64
	for k, row := range rowsB {
		if v, ok := inA[row]; ok {
			xs = append(xs, v)
			ys = append(ys, xb[k])
		}
	}
	if len(xs) < 2 {
		return 0, false
	}
	return stats.Pearson(xs, ys)
}
