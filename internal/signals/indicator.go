package signals

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
)

// IndicatorMACD computes the trend signal from period-based EMAs of the
// indicator library. The EMA period 2s-1 gives the same 1/s smoothing as the
// half-life estimator; the warm-up differs since the EMA is seeded with an SMA
// and emits nothing during its idle period.
type IndicatorMACD struct {
	Classical
}

// NewIndicatorMACD creates primitives using the indicator-library trend engine.
func NewIndicatorMACD(opts Options) IndicatorMACD {
	return IndicatorMACD{Classical: NewClassical(opts)}
}

// TrendSignal is the volatility-normalized EMA crossover of srs.
func (m IndicatorMACD) TrendSignal(srs []float64, short, long int) []float64 {
	fast := emaAligned(srs, 2*short-1)
	slow := emaAligned(srs, 2*long-1)
	return m.normalizeMACD(srs, subtract(fast, slow))
}

// emaAligned runs the EMA and pads the idle period with NaN so the output
// lines up with values.
func emaAligned(values []float64, period int) []float64 {
	out := NaNs(len(values))
	if period < 1 || len(values) < period {
		return out
	}

	ema := trend.NewEmaWithPeriod[float64](period)
	result := helper.ChanToSlice(ema.Compute(helper.SliceToChan(values)))
	if len(result) > len(values) {
		result = result[len(result)-len(values):]
	}
	copy(out[len(values)-len(result):], result)
	return out
}

var _ Primitives = IndicatorMACD{}
