package clean

import (
	"math"

	"dataprof/internal/stats"
	"dataprof/internal/table"
)

// Percentile bounds for outlier capping.
const (
	capLow  = 0.01
	capHigh = 0.99
)

// CapOutliers clips every numeric column to its [P1, P99] range: values below
// the 1st percentile become the 1st percentile, values above the 99th become
// the 99th. Non-numeric columns and missing cells are untouched; row and
// column counts never change.
//
// Columns where the percentiles cannot be computed (all cells missing) are
// skipped with a warning. Constant columns compute trivially and clip to
// themselves, which is a no-op.
func CapOutliers(t *table.Table) (*table.Table, Log) {
	const stage = "outliers"

	out := t.Clone()
	var log Log

	for i := range out.Columns {
		c := &out.Columns[i]
		if !c.Kind.Numeric() {
			continue
		}

		xs, _ := c.Float64s()
		if len(xs) == 0 {
			log.Warnf(stage, c.Name, "skipped: no numeric values to derive percentiles from")
			continue
		}

		lo, okLo := stats.Percentile(xs, capLow)
		hi, okHi := stats.Percentile(xs, capHigh)
		if !okLo || !okHi {
			log.Warnf(stage, c.Name, "skipped: percentile computation failed")
			continue
		}

		// Fractional bounds force an integer column to float so the capped
		// values stay inside [P1, P99] exactly.
		if c.Kind == table.Int && (lo != math.Trunc(lo) || hi != math.Trunc(hi)) {
			promoteToFloat(c)
		}

		capped := 0
		for j, v := range c.Values {
			var x float64
			switch y := v.(type) {
			case int64:
				x = float64(y)
			case float64:
				x = y
			default:
				continue
			}
			clipped := x
			if clipped < lo {
				clipped = lo
			} else if clipped > hi {
				clipped = hi
			}
			if clipped == x {
				continue
			}
			capped++
			if c.Kind == table.Int {
				c.Values[j] = int64(clipped)
			} else {
				c.Values[j] = clipped
			}
		}

		if capped > 0 {
			log.Infof(stage, c.Name, "capped %d value(s) to [%s, %s]",
				capped, table.FormatValue(lo), table.FormatValue(hi))
		}
	}

	return out, log
}
