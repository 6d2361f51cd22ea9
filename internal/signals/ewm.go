package signals

import "math"

// AlphaFromHalflife converts a half-life in observations to a smoothing factor.
func AlphaFromHalflife(halflife float64) float64 {
	return 1 - math.Exp(math.Log(0.5)/halflife)
}

// AlphaFromSpan converts a span in observations to a smoothing factor.
func AlphaFromSpan(span float64) float64 {
	return 2 / (span + 1)
}

// HalflifeFromTimescale returns the half-life whose per-step decay is 1 - 1/timescale.
func HalflifeFromTimescale(timescale float64) float64 {
	return math.Log(0.5) / math.Log(1-1/timescale)
}

// EwmMean returns the adjusted exponentially weighted mean of x.
// Observation k steps in the past carries weight (1-alpha)^k; NaN inputs are
// skipped but still age earlier observations. Positions with fewer than
// minPeriods (at least 1) observations are NaN.
func EwmMean(x []float64, alpha float64, minPeriods int) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	minPeriods = max(minPeriods, 1)
	decay := 1 - alpha

	weighted := x[0]
	oldWt := 1.0
	nobs := 0
	if !math.IsNaN(x[0]) {
		nobs = 1
	}
	out[0] = emitIf(weighted, nobs >= minPeriods)

	for i := 1; i < len(x); i++ {
		cur := x[i]
		isObs := !math.IsNaN(cur)
		if isObs {
			nobs++
		}
		if !math.IsNaN(weighted) {
			oldWt *= decay
			if isObs {
				if weighted != cur {
					weighted = (oldWt*weighted + cur) / (oldWt + 1)
				}
				oldWt += 1
			}
		} else if isObs {
			weighted = cur
		}
		out[i] = emitIf(weighted, nobs >= minPeriods)
	}
	return out
}

// EwmStd returns the bias-corrected exponentially weighted standard deviation
// of x with the same weighting as EwmMean. The first observation always
// yields NaN since a single weight leaves the correction undefined.
func EwmStd(x []float64, alpha float64, minPeriods int) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	minPeriods = max(minPeriods, 1)
	decay := 1 - alpha

	mean := x[0]
	nobs := 0
	if !math.IsNaN(x[0]) {
		nobs = 1
	}
	sumWt, sumWt2, oldWt := 1.0, 1.0, 1.0
	cov := 0.0
	out[0] = correctedStd(cov, sumWt, sumWt2, nobs >= minPeriods)

	for i := 1; i < len(x); i++ {
		cur := x[i]
		isObs := !math.IsNaN(cur)
		if isObs {
			nobs++
		}
		if !math.IsNaN(mean) {
			sumWt *= decay
			sumWt2 *= decay * decay
			oldWt *= decay
			if isObs {
				oldMean := mean
				if mean != cur {
					mean = (oldWt*oldMean + cur) / (oldWt + 1)
				}
				d := oldMean - mean
				e := cur - mean
				cov = (oldWt*(cov+d*d) + e*e) / (oldWt + 1)
				sumWt++
				sumWt2++
				oldWt++
			}
		} else if isObs {
			mean = cur
		}
		out[i] = correctedStd(cov, sumWt, sumWt2, nobs >= minPeriods)
	}
	return out
}

func correctedStd(cov, sumWt, sumWt2 float64, ok bool) float64 {
	if !ok {
		return math.NaN()
	}
	numerator := sumWt * sumWt
	denominator := numerator - sumWt2
	if denominator <= 0 {
		return math.NaN()
	}
	return math.Sqrt(numerator / denominator * cov)
}

func emitIf(v float64, ok bool) float64 {
	if !ok {
		return math.NaN()
	}
	return v
}
