// Package metrics summarizes feature columns of the assembled table.
package metrics

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ColumnStats is the distribution of one feature column.
type ColumnStats struct {
	Count  int
	Mean   float64
	Stddev float64 // sample (n-1)
	Min    float64
	P10    float64
	Median float64
	P90    float64
	Max    float64
}

// computeColumnStats calculates the distribution of values.
// Non-finite values are skipped.
func computeColumnStats(values []float64) ColumnStats {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	n := len(finite)
	if n == 0 {
		return ColumnStats{}
	}

	mean, stddev := stat.MeanStdDev(finite, nil)
	if n < 2 {
		stddev = 0 // Need at least 2 samples for sample stddev
	}

	sorted := slices.Clone(finite)
	slices.Sort(sorted)

	return ColumnStats{
		Count:  n,
		Mean:   mean,
		Stddev: stddev,
		Min:    sorted[0],
		P10:    computePercentile(sorted, 0.10),
		Median: computePercentile(sorted, 0.50),
		P90:    computePercentile(sorted, 0.90),
		Max:    sorted[n-1],
	}
}

// computePercentile uses linear interpolation.
// sorted must be pre-sorted ASC.
// p is percentile (0.10 = 10th percentile).
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	// Index for percentile (0-based, continuous)
	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// computeHitRate is the share of strictly positive values.
func computeHitRate(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	hits := 0
	for _, v := range values {
		if v > 0 {
			hits++
		}
	}
	return float64(hits) / float64(len(values))
}

// computeMaxDrawdown calculates worst peak-to-trough on cumulative values.
// max_drawdown = MAX(peak_cumulative - trough_cumulative)
// Values must be in chronological order.
func computeMaxDrawdown(values []float64) float64 {
	cumulative := 0.0
	peak := 0.0
	maxDrawdown := 0.0

	for _, v := range values {
		cumulative += v
		if cumulative > peak {
			peak = cumulative
		}
		if drawdown := peak - cumulative; drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}
	return maxDrawdown
}
