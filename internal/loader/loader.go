// Package loader reads tabular datasets from CSV, XLSX and HTML sources into
// the pipeline's table model. Every loader produces string cells first; type
// inference then coerces whole columns into the narrowest storage kind the
// observed values support.
package loader

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"dataprof/internal/classify"
	"dataprof/internal/table"
)

// ErrUnsupported wraps the extension of a file no loader handles.
type ErrUnsupported struct {
	Ext string
}

func (e *ErrUnsupported) Error() string {
	return fmt.Sprintf("loader: unsupported file type %q (want .csv, .xlsx or .html)", e.Ext)
}

// Load reads the file at path, dispatching on extension.
func Load(path string) (*table.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".txt":
		return LoadCSV(path)
	case ".xlsx":
		return LoadXLSX(path)
	case ".html", ".htm":
		return LoadHTML(path)
	default:
		return nil, &ErrUnsupported{Ext: ext}
	}
}

// Parse dispatches on the extension of name but parses in-memory bytes.
// Used by the HTTP API, where uploads never touch the filesystem.
func Parse(name string, data []byte) (*table.Table, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv", ".txt":
		return ParseCSV(data)
	case ".xlsx":
		return ParseXLSX(data)
	case ".html", ".htm":
		return ParseHTML(data)
	default:
		return nil, &ErrUnsupported{Ext: ext}
	}
}

// build converts a header row plus string records into a typed table. Records
// shorter than the header are padded with missing cells; longer ones are
// truncated. Empty strings become missing.
func build(header []string, records [][]string) (*table.Table, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("loader: no header row")
	}
	cols := make([]table.Column, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		cols[i] = table.Column{Name: name, Values: make([]any, len(records))}
	}
	for r, rec := range records {
		for c := range cols {
			if c < len(rec) {
				s := strings.TrimSpace(rec[c])
				if s != "" {
					cols[c].Values[r] = s
				}
			}
		}
	}
	t := table.New(cols...)
	inferKinds(t)
	return t, nil
}

// inferKinds retypes each column in place to the narrowest kind every
// non-missing value fits: int, then float, then bool, then datetime, with
// text as the catch-all. A single nonconforming value keeps the column
// textual; partial datetime columns are left for detection downstream, which
// tolerates a parse-failure minority.
func inferKinds(t *table.Table) {
	for i := range t.Columns {
		col := &t.Columns[i]
		if tryKind(col, table.Int, parseInt) {
			continue
		}
		if tryKind(col, table.Float, parseFloat) {
			continue
		}
		if tryKind(col, table.Bool, parseBoolCell) {
			continue
		}
		tryKind(col, table.Datetime, parseDatetimeCell)
	}
}

func tryKind(col *table.Column, kind table.Kind, parse func(string) (any, bool)) bool {
	converted := make([]any, len(col.Values))
	for i, v := range col.Values {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return false
		}
		out, ok := parse(s)
		if !ok {
			return false
		}
		converted[i] = out
	}
	col.Kind = kind
	col.Values = converted
	return true
}

func parseInt(s string) (any, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, false
	}
	return n, true
}

func parseFloat(s string) (any, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

func parseBoolCell(s string) (any, bool) {
	b, ok := classify.ParseBool(s)
	if !ok {
		return nil, false
	}
	return b, true
}

func parseDatetimeCell(s string) (any, bool) {
	ts, ok := classify.ParseTemporal(s)
	if !ok {
		return nil, false
	}
	return ts, true
}
