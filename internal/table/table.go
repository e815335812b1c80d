// Package table defines the in-memory tabular data model shared by the
// cleaning and profiling pipeline.
//
// Design constraints:
//   - A Table is column-oriented: an ordered sequence of named columns, each
//     holding values of a single storage kind. Missing cells are nil.
//   - Pipeline stages never mutate a Table they received; they Clone first and
//     return the copy. This keeps before/after comparisons valid.
//   - Value storage is deliberately small: int64, float64, bool, time.Time,
//     string, or nil. Loaders are responsible for coercing into this set.
package table


// Kind is the storage kind of a column.
type Kind int

const (
	Text Kind = iota
	Int
	Float
	Bool
	Datetime
)

// String returns the lowercase kind label used in logs and reports.
func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Datetime:
		return "datetime"
	default:
		return "text"
	}
}

// Numeric reports whether the kind participates in numeric statistics.
func (k Kind) Numeric() bool { return k == Int || k == Float }

// Column is a named, ordered sequence of values of one storage kind.
// A nil value is a missing cell.
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// Table is an ordered sequence of columns of equal length.
type Table struct {
	Columns []Column
}

// New builds a table from columns. Callers must pass columns of equal length;
// loaders guarantee this by construction.
func New(cols ...Column) *Table {
	return &Table{Columns: cols}
}

// NumRows returns the row count (0 for an empty table).
func (t *Table) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Empty reports whether the table is nil, has no columns, or has no rows.
// An empty table is the "no data" signal for the pipeline boundary.
func (t *Table) Empty() bool {
	return t == nil || len(t.Columns) == 0 || t.NumRows() == 0
}

// Names returns column names in declaration order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.Columns))
	for i := range t.Columns {
		out[i] = t.Columns[i].Name
	}
	return out
}

// Col returns a pointer to the named column, or nil when absent.
func (t *Table) Col(name string) *Column {
	if t == nil {
		return nil
	}
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// Clone returns a deep copy. Cell values themselves are immutable scalars, so
// copying the value slices is sufficient.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		vals := make([]any, len(c.Values))
		copy(vals, c.Values)
		out.Columns[i] = Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	return out
}

// MissingCount returns the number of nil cells in the column.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

// Float64s extracts the column's non-missing values as float64, together with
// the row indexes they came from. Only meaningful for numeric kinds; other
// kinds return nothing.
func (c *Column) Float64s() ([]float64, []int) {
	if !c.Kind.Numeric() {
		return nil, nil
	}
	vals := make([]float64, 0, len(c.Values))
	rows := make([]int, 0, len(c.Values))
	for i, v := range c.Values {
		switch x := v.(type) {
		case int64:
			vals = append(vals, float64(x))
			rows = append(rows, i)
		case float64:
			vals = append(vals, x)
			rows = append(rows, i)
		}
	}
	return vals, rows
}

// DistinctCount returns the number of distinct non-missing values, compared
// by canonical string rendering.
func (c *Column) DistinctCount() int {
	set := make(map[string]struct{}, len(c.Values))
	for _, v := range c.Values {
		if v == nil {
			continue
		}
		set[FormatValue(v)] = struct{}{}
	}
	return len(set)
}

// IsDatetime is a convenience used by the imputer's forward-fill branch.
// Datetime cells hold time.Time values.
func (c *Column) IsDatetime() bool { return c.Kind == Datetime }
