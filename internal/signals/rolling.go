package signals

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RollingStd returns the sample standard deviation over a trailing window of
// exactly window observations. Positions whose window is incomplete or holds a
// NaN are NaN.
func RollingStd(x []float64, window int) []float64 {
	out := NaNs(len(x))
	if window < 2 || len(x) < window {
		return out
	}

	// Running sums are shifted by an anchor value to limit cancellation.
	var anchor float64
	var sum, sumSq float64
	nan := 0
	seeded := false

	for i := range x {
		v := x[i]
		if math.IsNaN(v) {
			nan++
		}
		if i >= window {
			old := x[i-window]
			if math.IsNaN(old) {
				nan--
			} else if seeded {
				sum -= old - anchor
				sumSq -= (old - anchor) * (old - anchor)
			}
		}
		if i < window-1 {
			continue
		}
		if nan > 0 {
			seeded = false
			continue
		}
		if !seeded {
			w := x[i-window+1 : i+1]
			mean, variance := stat.MeanVariance(w, nil)
			out[i] = math.Sqrt(variance)
			anchor = mean
			sum, sumSq = 0, 0
			for _, y := range w {
				sum += y - anchor
				sumSq += (y - anchor) * (y - anchor)
			}
			seeded = true
			continue
		}
		sum += v - anchor
		sumSq += (v - anchor) * (v - anchor)

		n := float64(window)
		variance := (sumSq - sum*sum/n) / (n - 1)
		if variance < 0 {
			variance = 0
		}
		out[i] = math.Sqrt(variance)
	}
	return out
}

// BackFill replaces every NaN with the next non-NaN value after it.
// Trailing NaNs stay NaN.
func BackFill(x []float64) []float64 {
	out := make([]float64, len(x))
	next := math.NaN()
	for i := len(x) - 1; i >= 0; i-- {
		if !math.IsNaN(x[i]) {
			next = x[i]
		}
		out[i] = next
	}
	return out
}

// NaNs returns a slice of n NaN values.
func NaNs(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
