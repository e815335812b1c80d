package clean

import (
	"crypto/sha256"
	"strings"

	"dataprof/internal/table"
)

// rowFingerprint derives a deterministic identity for one row by hashing the
// canonical rendering of every cell, separated by the unit separator.
//
// Missing cells render as "null", so a missing cell and an empty string do
// not collide. Two rows with the same fingerprint are treated as exact
// duplicates.
func rowFingerprint(t *table.Table, row int, b *strings.Builder) [sha256.Size]byte {
	b.Reset()
	for i := range t.Columns {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		table.AppendValue(b, t.Columns[i].Values[row])
	}
	return sha256.Sum256([]byte(b.String()))
}
