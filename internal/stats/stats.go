// Package stats implements the summary statistics used by the cleaning and
// profiling pipeline.
//
// Every estimator returns an explicit ok flag instead of NaN. Callers treat
// ok=false as "statistic unavailable" and fall back per their own rules; no
// NaN ever leaves this package.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of xs. ok is false for empty input or when
// any value is non-finite.
func Mean(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, x := range xs {
		if !finite(x) {
			return 0, false
		}
		sum += x
	}
	return sum / float64(len(xs)), true
}

// Median returns the middle value (average of the two middle values for even
// counts). The input slice is not modified.
func Median(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	s := make([]float64, len(xs))
	copy(s, xs)
	for _, x := range s {
		if !finite(x) {
			return 0, false
		}
	}
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2], true
	}
	return (s[n/2-1] + s[n/2]) / 2, true
}

// Mode returns the most frequent value among values and its count. Ties are
// broken by the lexicographically smallest value so the result is
// deterministic. ok is false for empty input.
func Mode(values []string) (string, int, bool) {
	if len(values) == 0 {
		return "", 0, false
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best := ""
	bestN := 0
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best = v
			bestN = n
		}
	}
	return best, bestN, true
}

// Skewness returns the adjusted Fisher-Pearson skewness coefficient
// (the bias-corrected third standardized moment).
//
// ok is false when fewer than 3 values are present or the variance is zero;
// in both cases the distribution has no usable asymmetry signal and callers
// should behave as if the data were symmetric.
func Skewness(xs []float64) (float64, bool) {
	n := float64(len(xs))
	if len(xs) < 3 {
		return 0, false
	}
	mean, ok := Mean(xs)
	if !ok {
		return 0, false
	}
	var m2, m3 float64
	for _, x := range xs {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return 0, false
	}
	g1 := m3 / math.Pow(m2, 1.5)
	adj := g1 * math.Sqrt(n*(n-1)) / (n - 2)
	if !finite(adj) {
		return 0, false
	}
	return adj, true
}

// Percentile returns the q-th percentile of xs with q in [0,1], using linear
// interpolation between order statistics. The input slice is not modified.
func Percentile(xs []float64, q float64) (float64, bool) {
	if len(xs) == 0 || q < 0 || q > 1 {
		return 0, false
	}
	s := make([]float64, len(xs))
	copy(s, xs)
	for _, x := range s {
		if !finite(x) {
			return 0, false
		}
	}
	sort.Float64s(s)
	if len(s) == 1 {
		return s[0], true
	}
	h := q * float64(len(s)-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return s[lo], true
	}
	frac := h - float64(lo)
	return s[lo] + frac*(s[hi]-s[lo]), true
}

// Pearson returns the Pearson correlation coefficient between x and y.
// ok is false when lengths differ, fewer than 2 pairs exist, or either side
// has zero variance.
func Pearson(x, y []float64) (float64, bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}
	mx, okx := Mean(x)
	my, oky := Mean(y)
	if !okx || !oky {
		return 0, false
	}
	var sxy, sxx, syy float64
	for i := range x {
		dx := x[i] - mx
		dy := y[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	r := sxy / math.Sqrt(sxx*syy)
	// Guard rounding drift outside [-1, 1].
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, true
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Finite reports whether x is neither NaN nor infinite.
func Finite(x float64) bool { return finite(x) }
