package table

import (
	"testing"
	"time"
)

// TestCloneIsDeep verifies that mutating a clone never leaks into the
// original. Pipeline stages rely on this to keep before/after comparisons
// valid.
func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := New(Column{Name: "a", Kind: Int, Values: []any{int64(1), int64(2)}})
	cp := orig.Clone()
	cp.Columns[0].Values[0] = int64(99)
	cp.Columns[0].Name = "renamed"

	if got := orig.Columns[0].Values[0]; got != int64(1) {
		t.Fatalf("clone mutation leaked into original: got %v", got)
	}
	if orig.Columns[0].Name != "a" {
		t.Fatalf("clone rename leaked into original: got %q", orig.Columns[0].Name)
	}
}

// TestEmpty covers the three "no data" shapes: nil table, zero columns, and
// columns with zero rows.
func TestEmpty(t *testing.T) {
	t.Parallel()

	var nilTable *Table
	if !nilTable.Empty() {
		t.Fatal("nil table should be empty")
	}
	if !New().Empty() {
		t.Fatal("zero-column table should be empty")
	}
	if !New(Column{Name: "a"}).Empty() {
		t.Fatal("zero-row table should be empty")
	}
	if New(Column{Name: "a", Values: []any{nil}}).Empty() {
		t.Fatal("one-row table should not be empty")
	}
}

// TestFloat64s verifies numeric extraction returns values paired with their
// source row indexes and skips missing cells.
func TestFloat64s(t *testing.T) {
	t.Parallel()

	c := Column{Kind: Float, Values: []any{1.5, nil, int64(3), nil}}
	vals, rows := c.Float64s()
	if len(vals) != 2 || len(rows) != 2 {
		t.Fatalf("want 2 values, got vals=%v rows=%v", vals, rows)
	}
	if vals[0] != 1.5 || rows[0] != 0 {
		t.Fatalf("first extraction wrong: %v at row %d", vals[0], rows[0])
	}
	if vals[1] != 3 || rows[1] != 2 {
		t.Fatalf("second extraction wrong: %v at row %d", vals[1], rows[1])
	}

	text := Column{Kind: Text, Values: []any{"x"}}
	if vals, _ := text.Float64s(); vals != nil {
		t.Fatalf("text column should extract nothing, got %v", vals)
	}
}

// TestFormatValue pins the canonical renderings that duplicate detection and
// category labels depend on.
func TestFormatValue(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{true, "true"},
		{int64(42), "42"},
		{3.14, "3.14"},
		{2.0, "2"},
		{ts, "2024-03-01T12:00:00Z"},
	}
	for _, c := range cases {
		if got := FormatValue(c.in); got != c.want {
			t.Errorf("FormatValue(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

// TestDistinctCount verifies distinct counting ignores missing cells and
// compares by canonical rendering.
func TestDistinctCount(t *testing.T) {
	t.Parallel()

	c := Column{Kind: Text, Values: []any{"a", "b", "a", nil, nil}}
	if got := c.DistinctCount(); got != 2 {
		t.Fatalf("DistinctCount = %d, want 2", got)
	}
	if got := c.MissingCount(); got != 2 {
		t.Fatalf("MissingCount = %d, want 2", got)
	}
}
