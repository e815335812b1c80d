// Package classify partitions table columns into categorical, numerical, and
// datetime buckets and derives the set of columns eligible for categorical
// encoding.
//
// Classification is deterministic: it depends only on column storage kinds
// and distinct-value counts, never on locale, randomness, or iteration order.
package classify

import "dataprof/internal/table"

// CategoricalDistinctThreshold is the distinct-value count below which a
// numeric column is treated as categorical rather than numerical.
const CategoricalDistinctThreshold = 20

// Low-cardinality numeric refinement bounds: numeric columns with a distinct
// count in [EncodeRefineMin, EncodeRefineMax] are tagged for encoding even
// when they were bucketed as numerical.
const (
	EncodeRefineMin = 2
	EncodeRefineMax = 10
)

// Classification is the exhaustive, mutually exclusive partition of a table's
// columns, plus the encode set.
//
// Every column of the input appears in exactly one of Categorical, Numerical,
// or Datetime. Encode lists the columns the encoder should process: all
// categorical columns plus any numeric column caught by the low-cardinality
// refinement. Datetime columns are never encoded.
type Classification struct {
	Categorical []string `json:"categorical"`
	Numerical   []string `json:"numerical"`
	Datetime    []string `json:"datetime"`
	Encode      []string `json:"-"`
}

// Classify partitions t's columns. Rules, applied per column in declaration
// order:
//
//   - datetime storage → Datetime
//   - numeric storage with distinct count < 20 → Categorical
//   - numeric storage otherwise → Numerical
//   - any other storage (text, bool) → Categorical
//
// A second pass adds numeric columns with 2-10 distinct values to the encode
// set regardless of the bucket they landed in.
func Classify(t *table.Table) Classification {
	var cls Classification

	encodeSeen := make(map[string]struct{})
	addEncode := func(name string) {
		if _, dup := encodeSeen[name]; dup {
			return
		}
		encodeSeen[name] = struct{}{}
		cls.Encode = append(cls.Encode, name)
	}

	for i := range t.Columns {
		c := &t.Columns[i]
		switch {
		case c.Kind == table.Datetime:
			cls.Datetime = append(cls.Datetime, c.Name)
		case c.Kind.Numeric():
			if c.DistinctCount() < CategoricalDistinctThreshold {
				cls.Categorical = append(cls.Categorical, c.Name)
				addEncode(c.Name)
			} else {
				cls.Numerical = append(cls.Numerical, c.Name)
			}
		default:
			cls.Categorical = append(cls.Categorical, c.Name)
			addEncode(c.Name)
		}
	}

	// Refinement pass: low-cardinality numerics are encodable even when the
	// first pass bucketed them as numerical.
	for i := range t.Columns {
		c := &t.Columns[i]
		if !c.Kind.Numeric() {
			continue
		}
		if d := c.DistinctCount(); d >= EncodeRefineMin && d <= EncodeRefineMax {
			addEncode(c.Name)
		}
	}

	return cls
}
