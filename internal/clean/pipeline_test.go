package clean

import (
	"context"
	"errors"
	"testing"

	"dataprof/internal/table"
)

// TestPipelineEmptyInput verifies every empty table shape yields ErrNoData.
func TestPipelineEmptyInput(t *testing.T) {
	t.Parallel()

	p := New(nil)
	for _, in := range []*table.Table{
		nil,
		table.New(),
		table.New(table.Column{Name: "a"}),
	} {
		if _, err := p.Run(context.Background(), in); !errors.Is(err, ErrNoData) {
			t.Fatalf("err = %v, want ErrNoData", err)
		}
	}
}

// TestPipelineEndToEnd runs the full stage order over a small messy table:
// colliding headers, a missing value, a duplicate row, and a spike.
func TestPipelineEndToEnd(t *testing.T) {
	t.Parallel()

	in := table.New(
		table.Column{Name: "Customer Name", Kind: table.Text,
			Values: []any{"ann", "bob", "ann", "cid", "dee", "eve"}},
		table.Column{Name: "Income ($)", Kind: table.Float,
			Values: []any{1.0, 2.0, 1.0, 3.0, nil, 1000.0}},
		table.Column{Name: "Income ($)", Kind: table.Float,
			Values: []any{10.0, 20.0, 10.0, 30.0, 40.0, 50.0}},
	)

	res, err := New(nil).Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantNames := []string{"customer_name", "income", "income_1"}
	for i, n := range res.Table.Names() {
		if n != wantNames[i] {
			t.Fatalf("names = %v, want %v", res.Table.Names(), wantNames)
		}
	}
	// Row 2 duplicates row 0 exactly.
	if res.DuplicatesRemoved != 1 || res.RowsAfter != 5 {
		t.Fatalf("dupes=%d rowsAfter=%d, want 1/5", res.DuplicatesRemoved, res.RowsAfter)
	}
	if res.RowsBefore != 6 {
		t.Fatalf("rowsBefore = %d, want 6", res.RowsBefore)
	}
	if len(res.Fills) != 1 || res.Fills[0].Column != "income" {
		t.Fatalf("fills = %+v, want one fill on income", res.Fills)
	}
	// No missing cells remain in the filled column.
	if res.Table.Col("income").MissingCount() != 0 {
		t.Fatal("income still has missing cells")
	}
	// The input is untouched.
	if in.Columns[0].Name != "Customer Name" {
		t.Fatal("pipeline mutated its input")
	}
}

// TestPipelineIdempotent verifies running the pipeline on its own output
// changes nothing: names are stable, nothing left to fill or deduplicate.
func TestPipelineIdempotent(t *testing.T) {
	t.Parallel()

	in := table.New(
		table.Column{Name: "Some Col!", Kind: table.Float,
			Values: []any{1.0, 2.0, 2.0, nil, 5.0}},
	)
	first, err := New(nil).Run(context.Background(), in)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := New(nil).Run(context.Background(), first.Table)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if second.DuplicatesRemoved != 0 {
		t.Fatalf("second run removed %d rows", second.DuplicatesRemoved)
	}
	if len(second.Fills) != 0 {
		t.Fatalf("second run filled %+v", second.Fills)
	}
	if len(second.Renames) != 0 {
		t.Fatalf("second run renamed %+v", second.Renames)
	}
}

// TestPipelineDatetimeDetection verifies a mostly-parseable text column is
// converted before imputation and gets forward-fill.
func TestPipelineDatetimeDetection(t *testing.T) {
	t.Parallel()

	in := table.New(
		table.Column{Name: "when", Kind: table.Text,
			Values: []any{"2024-01-01", "2024-01-02", nil, "2024-01-04"}},
	)
	res, err := New(nil).Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.DatetimeColumns) != 1 || res.DatetimeColumns[0] != "when" {
		t.Fatalf("datetime columns = %v, want [when]", res.DatetimeColumns)
	}
	if res.Table.Col("when").Kind != table.Datetime {
		t.Fatalf("kind = %s, want datetime", res.Table.Col("when").Kind)
	}
	if len(res.Fills) != 1 || res.Fills[0].Method != FillForwardFill {
		t.Fatalf("fills = %+v, want forward_fill", res.Fills)
	}
}

// TestPipelineCancellation verifies a canceled context stops the run with
// ctx.Err() and no partial result.
func TestPipelineCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := table.New(table.Column{Name: "a", Kind: table.Int, Values: []any{int64(1)}})
	res, err := New(nil).Run(ctx, in)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Fatal("partial result returned after cancellation")
	}
}
