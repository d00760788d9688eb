// Package stats computes descriptive statistics of gene counts.
package stats

import (
	"math"
	"slices"

	"github.com/gnames/gntaxdb/pkg/taxon"
)

// Compute returns mean, median, population standard deviation, min, max
// and size of a sample. All floating values are rounded to 2 decimals.
// An empty sample gives a zero Summary.
func Compute(values []float64) taxon.Summary {
	n := len(values)
	if n == 0 {
		return taxon.Summary{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range sorted {
		d := v - mean
		sq += d * d
	}

	return taxon.Summary{
		Mean:   Round(mean),
		Median: Round(Median(sorted)),
		Std:    Round(math.Sqrt(sq / float64(n))),
		Min:    Round(sorted[0]),
		Max:    Round(sorted[n-1]),
		N:      n,
	}
}

// Median of a sorted sample, the midpoint of two middle values for
// samples of even size.
func Median(sorted []float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case n%2 == 1:
		return sorted[n/2]
	default:
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
}

// Round rounds to 2 decimal places. NaN and infinities become 0.
func Round(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return math.Round(f*100) / 100
}

// Normalize rounds a summary computed elsewhere (for example by a
// database) and replaces it with a zero summary when the sample is empty.
func Normalize(s taxon.Summary) taxon.Summary {
	if s.N <= 0 {
		return taxon.Summary{}
	}
	return taxon.Summary{
		Mean:   Round(s.Mean),
		Median: Round(s.Median),
		Std:    Round(s.Std),
		Min:    Round(s.Min),
		Max:    Round(s.Max),
		N:      s.N,
	}
}
