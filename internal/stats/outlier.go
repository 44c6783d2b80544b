package stats

import (
	"math"
	"slices"
)

const DefaultIQRMultiplier = 1.5

// UpperFence returns Q3 + k*(Q3-Q1). Quartiles are taken by position in the sorted
// sample (index floor(0.25n) and floor(0.75n)), not interpolated. Empty input gives 0.
func UpperFence(values []int, k float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := float64(len(sorted))
	q1 := float64(sorted[int(math.Floor(0.25*n))])
	q3 := float64(sorted[int(math.Floor(0.75*n))])
	return q3 + k*(q3-q1)
}

// Outliers returns the values strictly above the upper fence, in input order.
func Outliers(values []int, k float64) []int {
	fence := UpperFence(values, k)
	var out []int
	for _, v := range values {
		if float64(v) > fence {
			out = append(out, v)
		}
	}
	return out
}

// MeanStd returns the mean and population standard deviation.
func MeanStd(values []float64) (mean, sd float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if len(values) == 1 {
		return mean, 0
	}
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
