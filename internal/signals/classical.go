package signals

import "math"

// Classical implements Primitives with exponentially weighted estimators.
type Classical struct {
	opts Options
}

// NewClassical creates the default primitives. Zero option fields take defaults.
func NewClassical(opts Options) Classical {
	return Classical{opts: opts.withDefaults()}
}

// Returns computes srs[i]/srs[i-offset] - 1, NaN for the first offset positions.
func (c Classical) Returns(srs []float64, offset int) []float64 {
	out := NaNs(len(srs))
	if offset <= 0 {
		return out
	}
	for i := offset; i < len(srs); i++ {
		out[i] = srs[i]/srs[i-offset] - 1
	}
	return out
}

// Volatility is the EWM standard deviation of returns with span VolLookback,
// requiring VolLookback observations, with the warm-up gap back-filled.
func (c Classical) Volatility(returns []float64) []float64 {
	span := c.opts.VolLookback
	return BackFill(EwmStd(returns, AlphaFromSpan(float64(span)), span))
}

// VolScaledReturns computes r[i] * target / (vol[i-1] * sqrt(annualization)).
func (c Classical) VolScaledReturns(returns, vol []float64) []float64 {
	out := NaNs(len(returns))
	scale := c.opts.VolTarget / math.Sqrt(c.opts.Annualization)
	for i := 1; i < len(returns) && i < len(vol); i++ {
		out[i] = returns[i] * scale / vol[i-1]
	}
	return out
}

// TrendSignal is the volatility-normalized MACD of srs for timescales short and long.
func (c Classical) TrendSignal(srs []float64, short, long int) []float64 {
	fast := EwmMean(srs, AlphaFromHalflife(HalflifeFromTimescale(float64(short))), 0)
	slow := EwmMean(srs, AlphaFromHalflife(HalflifeFromTimescale(float64(long))), 0)
	return c.normalizeMACD(srs, subtract(fast, slow))
}

// normalizeMACD divides the raw crossover by the rolling price volatility and
// then by its own rolling volatility.
func (c Classical) normalizeMACD(srs, macd []float64) []float64 {
	q := divide(macd, BackFill(RollingStd(srs, c.opts.TrendVolWindow)))
	return divide(q, BackFill(RollingStd(q, c.opts.TrendNormWindow)))
}

func subtract(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func divide(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] / b[i]
	}
	return out
}

var _ Primitives = Classical{}
