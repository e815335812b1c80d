package clean

import (
	"strings"

	"dataprof/internal/table"
)

// Deduplicate removes exact duplicate rows, keeping the first occurrence of
// each distinct row. Row equality means equality across all columns, via the
// canonical fingerprint in rowkey.go.
//
// The operation is idempotent: running it on its own output removes nothing.
func Deduplicate(t *table.Table) (*table.Table, int) {
	rows := t.NumRows()
	if rows == 0 {
		return t.Clone(), 0
	}

	seen := make(map[[32]byte]struct{}, rows)
	keep := make([]int, 0, rows)
	var b strings.Builder

	for r := 0; r < rows; r++ {
		fp := rowFingerprint(t, r, &b)
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		keep = append(keep, r)
	}

	removed := rows - len(keep)
	if removed == 0 {
		return t.Clone(), 0
	}

	out := &table.Table{Columns: make([]table.Column, len(t.Columns))}
	for i, c := range t.Columns {
		vals := make([]any, 0, len(keep))
		for _, r := range keep {
			vals = append(vals, c.Values[r])
		}
		out.Columns[i] = table.Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	return out, removed
}
