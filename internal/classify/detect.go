package classify

import (
	"strings"
	"time"

	"dataprof/internal/table"
)

// Layouts tried when deciding whether a textual value is a date. Order
// matters: the first matching layout wins (DMY before MDY for ambiguous
// numeric dates).
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"01/02/2006",
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z07:00",
	"02.01.2006 15:04:05",
}

// ParseTemporal parses s as a date or timestamp using the known layouts.
func ParseTemporal(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, lay := range dateLayouts {
		if t, err := time.Parse(lay, s); err == nil {
			return t, true
		}
	}
	for _, lay := range timestampLayouts {
		if t, err := time.Parse(lay, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseBool parses common truthy/falsy encodings, case-insensitively.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "yes", "y":
		return true, true
	case "0", "f", "false", "no", "n":
		return false, true
	default:
		return false, false
	}
}

// datetimeRatio is the fraction of non-missing values that must parse as
// dates for a textual column to be reclassified as datetime.
const datetimeRatio = 0.7

// DetectDatetimes returns a copy of t where textual columns whose non-missing
// values parse as dates for more than 70% of entries are converted to
// datetime storage. Cells that fail to parse in a converted column become
// missing. The names of converted columns are returned.
//
// Detection is only attempted for textual columns; numeric, boolean, and
// already-datetime columns pass through unchanged.
func DetectDatetimes(t *table.Table) (*table.Table, []string) {
	out := t.Clone()
	var converted []string

	for i := range out.Columns {
		c := &out.Columns[i]
		if c.Kind != table.Text {
			continue
		}

		nonMissing := 0
		parsed := 0
		for _, v := range c.Values {
			s, isString := v.(string)
			if !isString {
				continue
			}
			nonMissing++
			if _, ok := ParseTemporal(s); ok {
				parsed++
			}
		}
		if nonMissing == 0 || float64(parsed)/float64(nonMissing) <= datetimeRatio {
			continue
		}

		for j, v := range c.Values {
			s, isString := v.(string)
			if !isString {
				c.Values[j] = nil
				continue
			}
			if ts, ok := ParseTemporal(s); ok {
				c.Values[j] = ts
			} else {
				c.Values[j] = nil
			}
		}
		c.Kind = table.Datetime
		converted = append(converted, c.Name)
	}

	return out, converted
}
