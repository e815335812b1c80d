package clean

import (
	"testing"

	"dataprof/internal/table"
)

func dupTable() *table.Table {
	return table.New(
		table.Column{Name: "name", Kind: table.Text, Values: []any{"a", "b", "a", nil}},
		table.Column{Name: "score", Kind: table.Int, Values: []any{int64(1), int64(2), int64(1), int64(3)}},
	)
}

// TestDeduplicateKeepsFirst verifies exact duplicates are removed and the
// first occurrence survives in original order.
func TestDeduplicateKeepsFirst(t *testing.T) {
	t.Parallel()

	out, removed := Deduplicate(dupTable())
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if out.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", out.NumRows())
	}
	if got := out.Columns[0].Values[0]; got != "a" {
		t.Fatalf("first row changed: %v", got)
	}
}

// TestDeduplicateIdempotent verifies a second pass removes nothing.
func TestDeduplicateIdempotent(t *testing.T) {
	t.Parallel()

	once, _ := Deduplicate(dupTable())
	twice, removed := Deduplicate(once)
	if removed != 0 {
		t.Fatalf("second pass removed %d rows, want 0", removed)
	}
	if twice.NumRows() != once.NumRows() {
		t.Fatalf("row count changed on second pass: %d -> %d", once.NumRows(), twice.NumRows())
	}
}

// TestDeduplicateMissingVsEmpty verifies a missing cell and an empty string
// are different rows, not duplicates.
func TestDeduplicateMissingVsEmpty(t *testing.T) {
	t.Parallel()

	in := table.New(table.Column{Name: "v", Kind: table.Text, Values: []any{nil, ""}})
	_, removed := Deduplicate(in)
	if removed != 0 {
		t.Fatalf("nil and empty string treated as duplicates (removed=%d)", removed)
	}
}

// TestDeduplicateHundredRows runs the bulk scenario: 100 rows of which 10 are
// exact copies leave 90, and rerunning leaves 90.
func TestDeduplicateHundredRows(t *testing.T) {
	t.Parallel()

	vals := make([]any, 0, 100)
	for i := 0; i < 90; i++ {
		vals = append(vals, int64(i))
	}
	for i := 0; i < 10; i++ {
		vals = append(vals, int64(i))
	}
	in := table.New(table.Column{Name: "id", Kind: table.Int, Values: vals})

	out, removed := Deduplicate(in)
	if removed != 10 || out.NumRows() != 90 {
		t.Fatalf("removed=%d rows=%d, want 10/90", removed, out.NumRows())
	}
	again, removed := Deduplicate(out)
	if removed != 0 || again.NumRows() != 90 {
		t.Fatalf("rerun removed=%d rows=%d, want 0/90", removed, again.NumRows())
	}
}
