package chart

import "math"

// Normalize rescales a series so its first value maps to 100, making symbols
// with different price magnitudes visually comparable. An empty series is
// returned as-is. A zero or non-finite base returns the original series
// untouched: the chart shows raw values instead of dividing by a degenerate
// first value.
func Normalize(values []float64) []float64 {
	if len(values) == 0 {
		return values
	}
	base := values[0]
	if base == 0 || math.IsNaN(base) || math.IsInf(base, 0) {
		return values
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / base * 100
	}
	return out
}
