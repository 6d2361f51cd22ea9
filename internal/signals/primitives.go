// Package signals provides the numeric primitives the feature pipeline is
// built on: returns, volatility, vol-scaled returns and the trend signal.
package signals

import "fmt"

// Primitives is the capability set the feature pipeline depends on.
// All series are aligned with their input; undefined positions are NaN.
type Primitives interface {
	// Returns computes srs[i]/srs[i-offset] - 1.
	Returns(srs []float64, offset int) []float64

	// Volatility estimates per-step volatility from a return series.
	Volatility(returns []float64) []float64

	// VolScaledReturns scales returns to a volatility target using the
	// previous step's volatility estimate.
	VolScaledReturns(returns, vol []float64) []float64

	// TrendSignal returns a bounded trend indicator for a (short, long) window pair.
	TrendSignal(srs []float64, short, long int) []float64
}

// Trend engine names accepted by New.
const (
	EngineHalflife  = "halflife"
	EngineIndicator = "indicator"
)

// Options parameterizes the default primitives.
type Options struct {
	VolLookback     int     // EWM span of the volatility estimate
	VolTarget       float64 // annualized volatility target
	Annualization   float64 // steps per year
	TrendVolWindow  int     // rolling window normalizing the MACD by price volatility
	TrendNormWindow int     // rolling window normalizing the signal by its own volatility
}

// DefaultOptions returns the options used when a field is left zero.
func DefaultOptions() Options {
	return Options{
		VolLookback:     60,
		VolTarget:       0.15,
		Annualization:   252 * 23400,
		TrendVolWindow:  63,
		TrendNormWindow: 252,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.VolLookback <= 0 {
		o.VolLookback = d.VolLookback
	}
	if o.VolTarget <= 0 {
		o.VolTarget = d.VolTarget
	}
	if o.Annualization <= 0 {
		o.Annualization = d.Annualization
	}
	if o.TrendVolWindow <= 0 {
		o.TrendVolWindow = d.TrendVolWindow
	}
	if o.TrendNormWindow <= 0 {
		o.TrendNormWindow = d.TrendNormWindow
	}
	return o
}

// New returns the primitives for a trend engine name.
func New(engine string, opts Options) (Primitives, error) {
	switch engine {
	case "", EngineHalflife:
		return NewClassical(opts), nil
	case EngineIndicator:
		return NewIndicatorMACD(opts), nil
	default:
		return nil, fmt.Errorf("unknown trend engine %q", engine)
	}
}
