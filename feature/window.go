package feature

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Lag shifts the series k positions forward. The first k values are NaN.
func Lag(y []float64, k int) []float64 {
	res := make([]float64, len(y))
	for i := range res {
		if i < k {
			res[i] = math.NaN()
			continue
		}
		res[i] = y[i-k]
	}
	return res
}

// RollingMean returns the mean of the trailing window of w values ending at each position
// inclusive. Windows near the start use every available value so the result is never NaN
// for a non-empty series.
func RollingMean(y []float64, w int) []float64 {
	res := make([]float64, len(y))
	for i := range res {
		start := max(0, i-w+1)
		window := y[start : i+1]
		res[i] = floats.Sum(window) / float64(len(window))
	}
	return res
}

// TrailingMean is the mean of the last w values of the series, or of all values when
// fewer exist. An empty series yields NaN.
func TrailingMean(y []float64, w int) float64 {
	if len(y) == 0 {
		return math.NaN()
	}
	window := y[max(0, len(y)-w):]
	return floats.Sum(window) / float64(len(window))
}

// FromLast returns the k-th value counting back from the end of the series, where k = 1
// is the last value.
func FromLast(y []float64, k int) (float64, bool) {
	if k < 1 || k > len(y) {
		return math.NaN(), false
	}
	return y[len(y)-k], true
}
