package clean

import (
	"strconv"
	"strings"

	"dataprof/internal/table"
)

// NormalizeName converts an arbitrary column name into a safe, lowercase
// identifier: trimmed, lowercased, every non-[a-z0-9_] rune replaced with an
// underscore, runs of underscores collapsed, and leading/trailing underscores
// stripped.
//
// The function is idempotent: NormalizeName(NormalizeName(s)) == NormalizeName(s).
// An all-punctuation input normalizes to the empty string, which is still a
// valid name as far as the uniqueness pass is concerned.
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastUnderscore := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		// Everything else, underscore included, collapses to a single '_'.
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	return strings.Trim(b.String(), "_")
}

// UniqueNames resolves duplicate names left-to-right: the first occurrence
// keeps its name, each repeat gets a "_<n>" suffix with the smallest n >= 1
// that collides with neither an already-assigned name nor a name still to
// come (so an input like ["a","a","a_1"] yields ["a","a_2","a_1"], never a
// duplicate "a_1"). The returned slice has the same length and order as the
// input, and its entries are pairwise distinct.
func UniqueNames(names []string) []string {
	remaining := make(map[string]int, len(names))
	for _, n := range names {
		remaining[n]++
	}

	used := make(map[string]struct{}, len(names))
	next := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		remaining[n]--
		if _, taken := used[n]; !taken {
			used[n] = struct{}{}
			out[i] = n
			continue
		}
		k := next[n]
		var cand string
		for {
			k++
			cand = n + "_" + strconv.Itoa(k)
			if _, taken := used[cand]; !taken && remaining[cand] == 0 {
				break
			}
		}
		next[n] = k
		used[cand] = struct{}{}
		out[i] = cand
	}
	return out
}

// NormalizeColumns returns a copy of t with every column name normalized and
// made unique, plus a Rename record for each column whose final name differs
// from the normalized form (i.e. a collision occurred).
func NormalizeColumns(t *table.Table) (*table.Table, []Rename) {
	out := t.Clone()

	normalized := make([]string, len(out.Columns))
	for i := range out.Columns {
		normalized[i] = NormalizeName(out.Columns[i].Name)
	}
	final := UniqueNames(normalized)

	var renames []Rename
	for i := range out.Columns {
		if final[i] != normalized[i] {
			renames = append(renames, Rename{
				Original:   t.Columns[i].Name,
				Normalized: normalized[i],
				Final:      final[i],
			})
		}
		out.Columns[i].Name = final[i]
	}
	return out, renames
}
