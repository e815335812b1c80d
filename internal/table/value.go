package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatValue renders a cell value in its canonical string form.
//
// Canonical rendering is an operational contract: duplicate detection,
// category labels, and mode counting all compare cells through this function,
// so two cells that render equal are treated as equal everywhere.
//
// Rules:
//   - nil renders as "" (missing)
//   - floats use the shortest round-trip representation
//   - datetimes are rendered in UTC RFC3339Nano
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339Nano)
	default:
		// Loaders only produce the scalar set above; anything else is a
		// programming error but must still render deterministically.
		return fmt.Sprintf("%v", t)
	}
}

// AppendValue writes the canonical form of v to b. Missing cells are written
// as the literal "null" so an empty string and a missing cell fingerprint
// differently.
func AppendValue(b *strings.Builder, v any) {
	if v == nil {
		b.WriteString("null")
		return
	}
	b.WriteString(FormatValue(v))
}
