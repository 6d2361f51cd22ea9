// Package features derives the per-asset feature table from a price series.
package features

import (
	"math"

	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/signals"
)

// Params holds the fixed constants of the feature derivation.
type Params struct {
	VolThreshold      float64 // winsorization envelope width in standard deviations
	HalflifeWinsorise float64 // half-life of the envelope moments, in observations
	MinPrice          float64 // prices at or below this are treated as bad ticks
	SecondsPerDay     int     // length of a trading day
}

// DefaultParams returns the production constants.
func DefaultParams() Params {
	return Params{
		VolThreshold:      5,
		HalflifeWinsorise: 252,
		MinPrice:          1e-8,
		SecondsPerDay:     23400,
	}
}

// Assembler turns one asset's price series into feature rows.
type Assembler struct {
	prims  signals.Primitives
	params Params
}

// NewAssembler creates an assembler over the given primitives.
func NewAssembler(prims signals.Primitives, params Params) *Assembler {
	return &Assembler{prims: prims, params: params}
}

// Result is the outcome of assembling one asset.
type Result struct {
	Rows       []*domain.FeatureRow
	BadTicks   int // points removed before winsorization
	Incomplete int // rows dropped for a missing value
}

// Assemble runs the full derivation for one asset:
//  1. Drop bad ticks
//  2. Winsorize prices into srs
//  3. Returns, volatility and next-step vol-scaled target from srs
//  4. Normalized returns for every horizon
//  5. Trend signal bank
//  6. Calendar fields
//  7. Drop rows holding any missing value
func (a *Assembler) Assemble(series *domain.PriceSeries) *Result {
	points := DropBadTicks(series.Points, a.params.MinPrice)
	result := &Result{BadTicks: len(series.Points) - len(points)}
	if len(points) == 0 {
		return result
	}

	clean := &domain.PriceSeries{Ticker: series.Ticker, Points: points}
	mids := clean.Mids()

	srs := Winsorize(mids, a.params.HalflifeWinsorise, a.params.VolThreshold)
	returns := a.prims.Returns(srs, 1)
	vol := a.prims.Volatility(returns)
	target := shiftBackward(a.prims.VolScaledReturns(returns, vol))
	norm := NormalizedReturns(a.prims, srs, vol, domain.Horizons(a.params.SecondsPerDay))
	trend := TrendSignals(a.prims, srs)
	cal := ExtractCalendar(clean.Timestamps())

	for i := range points {
		row := &domain.FeatureRow{
			Ticker:        series.Ticker,
			Date:          cal.Date[i],
			Mid:           mids[i],
			Srs:           srs[i],
			SecondReturns: returns[i],
			SecondVol:     vol[i],
			TargetReturns: target[i],
			Calendar:      cal.Row(i),
		}
		for h := range norm {
			row.NormReturns[h] = norm[h][i]
		}
		for p := range trend {
			row.TrendSignals[p] = trend[p][i]
		}

		if !complete(row) {
			result.Incomplete++
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	return result
}

// shiftBackward moves every value one step earlier; the last position is NaN.
func shiftBackward(x []float64) []float64 {
	out := signals.NaNs(len(x))
	if len(x) > 1 {
		copy(out, x[1:])
	}
	return out
}

// complete reports whether every numeric field of the row is finite.
func complete(r *domain.FeatureRow) bool {
	for _, v := range []float64{r.Mid, r.Srs, r.SecondReturns, r.SecondVol, r.TargetReturns} {
		if !finite(v) {
			return false
		}
	}
	for _, v := range r.NormReturns {
		if !finite(v) {
			return false
		}
	}
	for _, v := range r.TrendSignals {
		if !finite(v) {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
