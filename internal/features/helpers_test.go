package features

import (
	"math/rand"
	"time"

	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/signals"
)

var sessionStart = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

// stubPrimitives keeps the real return arithmetic but replaces the
// volatility and trend estimators with constants.
type stubPrimitives struct {
	signals.Classical
	vol float64
}

func newStub(vol float64) stubPrimitives {
	return stubPrimitives{Classical: signals.NewClassical(signals.Options{}), vol: vol}
}

func (s stubPrimitives) Volatility(returns []float64) []float64 {
	out := make([]float64, len(returns))
	for i := range out {
		out[i] = s.vol
	}
	return out
}

func (s stubPrimitives) TrendSignal(srs []float64, _, _ int) []float64 {
	return make([]float64, len(srs))
}

// walk returns n prices of a geometric random walk with small steps.
func walk(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	p := 100.0
	for i := range out {
		p *= 1 + 0.0005*rng.NormFloat64()
		out[i] = p
	}
	return out
}

func seriesOf(ticker string, mids []float64) *domain.PriceSeries {
	s := &domain.PriceSeries{Ticker: ticker, Points: make([]domain.PricePoint, len(mids))}
	for i, m := range mids {
		s.Points[i] = domain.PricePoint{Timestamp: sessionStart.Add(time.Duration(i) * time.Second), Mid: m}
	}
	return s
}

func testParams() Params {
	p := DefaultParams()
	p.SecondsPerDay = 1
	return p
}
