package clean

import (
	"math"

	"dataprof/internal/stats"
	"dataprof/internal/table"
)

// skewThreshold is the |skewness| above which the median replaces the mean as
// the fill value for numeric columns. Skewed distributions make the mean a
// poor central-tendency estimator.
const skewThreshold = 1.0

// ImputeMissing fills missing cells per column and returns the filled table,
// one FillRecord per affected column, and the log entries produced.
//
// Strategy selection by column kind:
//   - datetime: forward-fill (propagate last valid prior value in row order);
//     leading missing cells stay missing until the first valid value.
//   - numeric: mean, or median when |skewness| > 1. Non-finite cells are
//     demoted to missing (and logged) before statistics are computed.
//   - everything else: most frequent value; ties break to the
//     lexicographically smallest value.
//
// A column whose statistic cannot be computed is skipped with a warning; the
// failure never aborts the run. A column with zero observed values is left
// unfilled and logged; no sentinel is substituted.
func ImputeMissing(t *table.Table) (*table.Table, []FillRecord, Log) {
	const stage = "impute"

	out := t.Clone()
	var records []FillRecord
	var log Log

	for i := range out.Columns {
		c := &out.Columns[i]

		if c.Kind.Numeric() {
			if n := clearNonFinite(c); n > 0 {
				log.Warnf(stage, c.Name, "replaced %d non-finite value(s) with missing", n)
			}
		}

		missing := c.MissingCount()
		if missing == 0 {
			continue
		}

		switch {
		case c.Kind == table.Datetime:
			leading := forwardFill(c)
			records = append(records, FillRecord{
				Column:       c.Name,
				MissingCount: missing,
				Method:       FillForwardFill,
				FillValue:    "previous value",
			})
			if leading > 0 {
				log.Infof(stage, c.Name, "forward-fill left %d leading cell(s) missing (no prior value)", leading)
			}
			log.Infof(stage, c.Name, "filled %d missing value(s) via forward-fill", missing-leading)

		case c.Kind.Numeric():
			rec, ok := fillNumeric(c, missing, &log)
			if ok {
				records = append(records, rec)
				log.Infof(stage, c.Name, "filled %d missing value(s) with %s %s", missing, rec.Method, rec.FillValue)
			}

		default:
			rec, ok := fillMode(c, missing, &log)
			if ok {
				records = append(records, rec)
				log.Infof(stage, c.Name, "filled %d missing value(s) with mode %q", missing, rec.FillValue)
			}
		}
	}

	return out, records, log
}

// clearNonFinite demotes NaN/Inf float cells to missing and returns how many
// were demoted.
func clearNonFinite(c *table.Column) int {
	n := 0
	for i, v := range c.Values {
		if f, isFloat := v.(float64); isFloat && !stats.Finite(f) {
			c.Values[i] = nil
			n++
		}
	}
	return n
}

// forwardFill propagates the last valid value down the column and returns the
// number of leading cells that remained missing.
func forwardFill(c *table.Column) int {
	leading := 0
	var last any
	for i, v := range c.Values {
		if v != nil {
			last = v
			continue
		}
		if last == nil {
			leading++
			continue
		}
		c.Values[i] = last
	}
	return leading
}

func fillNumeric(c *table.Column, missing int, log *Log) (FillRecord, bool) {
	const stage = "impute"

	xs, _ := c.Float64s()
	if len(xs) == 0 {
		log.Warnf(stage, c.Name, "skipped: no observed values to derive a fill from")
		return FillRecord{}, false
	}

	method := FillMean
	if skew, ok := stats.Skewness(xs); ok && math.Abs(skew) > skewThreshold {
		method = FillMedian
	}

	var fill float64
	var ok bool
	if method == FillMedian {
		fill, ok = stats.Median(xs)
	} else {
		fill, ok = stats.Mean(xs)
	}
	if !ok || !stats.Finite(fill) {
		log.Warnf(stage, c.Name, "skipped: %s could not be computed", method)
		return FillRecord{}, false
	}

	// An integer column whose fill value is fractional is promoted to float;
	// otherwise the fill is stored as the column's own kind.
	if c.Kind == table.Int && fill != math.Trunc(fill) {
		promoteToFloat(c)
	}
	for i, v := range c.Values {
		if v != nil {
			continue
		}
		if c.Kind == table.Int {
			c.Values[i] = int64(fill)
		} else {
			c.Values[i] = fill
		}
	}

	return FillRecord{
		Column:       c.Name,
		MissingCount: missing,
		Method:       method,
		FillValue:    table.FormatValue(fill),
	}, true
}

func fillMode(c *table.Column, missing int, log *Log) (FillRecord, bool) {
	const stage = "impute"

	observed := make([]string, 0, len(c.Values))
	byLabel := make(map[string]any)
	for _, v := range c.Values {
		if v == nil {
			continue
		}
		label := table.FormatValue(v)
		observed = append(observed, label)
		byLabel[label] = v
	}

	mode, _, ok := stats.Mode(observed)
	if !ok {
		log.Warnf(stage, c.Name, "skipped: no observed values, column left unfilled")
		return FillRecord{}, false
	}

	fill := byLabel[mode]
	for i, v := range c.Values {
		if v == nil {
			c.Values[i] = fill
		}
	}

	return FillRecord{
		Column:       c.Name,
		MissingCount: missing,
		Method:       FillMode,
		FillValue:    mode,
	}, true
}

func promoteToFloat(c *table.Column) {
	for i, v := range c.Values {
		if x, isInt := v.(int64); isInt {
			c.Values[i] = float64(x)
		}
	}
	c.Kind = table.Float
}
