// Package encode converts categorical columns into integer codes suitable for
// numeric analysis, keeping the code-to-label mapping so results remain
// interpretable.
package encode

import (
	"fmt"
	"sort"
	"strconv"

	"dataprof/internal/table"
)

// MissingCode is the code assigned to cells with no observed value, and to
// any label not present in a mapping's category set.
const MissingCode int64 = -1

// Mapping is a bijection between category labels and dense integer codes
// 0..n-1. Codes are assigned in sorted label order: numeric sort when every
// label parses as a number, lexicographic otherwise. A mapping is a closed
// world over the labels observed when it was built.
type Mapping struct {
	codeToLabel []string
	labelToCode map[string]int64
}

func newMapping(labels []string) *Mapping {
	m := &Mapping{
		codeToLabel: labels,
		labelToCode: make(map[string]int64, len(labels)),
	}
	for i, l := range labels {
		m.labelToCode[l] = int64(i)
	}
	return m
}

// Len reports the number of distinct categories.
func (m *Mapping) Len() int { return len(m.codeToLabel) }

// Labels returns the category labels in code order. The slice is shared;
// callers must not modify it.
func (m *Mapping) Labels() []string { return m.codeToLabel }

// Encode maps a label to its code. Unknown labels map to MissingCode.
func (m *Mapping) Encode(label string) int64 {
	if c, ok := m.labelToCode[label]; ok {
		return c
	}
	return MissingCode
}

// Decode maps a code back to its label. MissingCode and out-of-range codes
// decode to "" with ok false.
func (m *Mapping) Decode(code int64) (string, bool) {
	if code < 0 || code >= int64(len(m.codeToLabel)) {
		return "", false
	}
	return m.codeToLabel[code], true
}

// Columns encodes the named columns of t, returning a new table in which each
// named column is replaced by an Int column of codes, plus one Mapping per
// encoded column. Missing cells encode to MissingCode. Columns named but not
// present in t are an error: the caller derived the list from the same table,
// so a miss means the tables got out of sync.
func Columns(t *table.Table, names []string) (*table.Table, map[string]*Mapping, error) {
	out := t.Clone()
	mappings := make(map[string]*Mapping, len(names))
	for _, name := range names {
		col := out.Col(name)
		if col == nil {
			return nil, nil, fmt.Errorf("encode: column %q not present", name)
		}
		m := buildMapping(col)
		codes := make([]any, len(col.Values))
		for i, v := range col.Values {
			if v == nil {
				codes[i] = MissingCode
				continue
			}
			codes[i] = m.Encode(table.FormatValue(v))
		}
		col.Kind = table.Int
		col.Values = codes
		mappings[name] = m
	}
	return out, mappings, nil
}

// buildMapping collects the distinct observed labels of col and orders them.
// An all-missing column yields an empty mapping, so every cell encodes to
// MissingCode.
func buildMapping(col *table.Column) *Mapping {
	seen := make(map[string]struct{})
	for _, v := range col.Values {
		if v == nil {
			continue
		}
		seen[table.FormatValue(v)] = struct{}{}
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sortLabels(labels)
	return newMapping(labels)
}

// sortLabels sorts numerically when every label parses as a float, otherwise
// lexicographically. Numeric categorical columns (ratings, bucket ids) keep
// their natural order that way.
func sortLabels(labels []string) {
	nums := make(map[string]float64, len(labels))
	allNumeric := len(labels) > 0
	for _, l := range labels {
		f, err := strconv.ParseFloat(l, 64)
		if err != nil {
			allNumeric = false
			break
		}
		nums[l] = f
	}
	if allNumeric {
		sort.Slice(labels, func(i, j int) bool {
			if nums[labels[i]] != nums[labels[j]] {
				return nums[labels[i]] < nums[labels[j]]
			}
			return labels[i] < labels[j]
		})
		return
	}
	sort.Strings(labels)
}
