package metrics

import (
	"momentum-feature-lab/internal/domain"
)

// TickerSummary describes the target and volatility columns of one ticker.
type TickerSummary struct {
	Ticker string
	Rows   int

	// TargetReturns is the distribution of the next-step vol-scaled return.
	TargetReturns ColumnStats
	// HitRate is the share of rows with a positive target return.
	HitRate float64
	// MaxDrawdown of the cumulative target return in date order.
	MaxDrawdown float64

	SecondVol ColumnStats
}

// SummarizeTickers computes one summary per ticker, in first-appearance
// order. Rows of a ticker must be in date order.
func SummarizeTickers(rows []*domain.FeatureRow) []TickerSummary {
	var order []string
	targets := make(map[string][]float64)
	vols := make(map[string][]float64)

	for _, r := range rows {
		if _, ok := targets[r.Ticker]; !ok {
			order = append(order, r.Ticker)
		}
		targets[r.Ticker] = append(targets[r.Ticker], r.TargetReturns)
		vols[r.Ticker] = append(vols[r.Ticker], r.SecondVol)
	}

	out := make([]TickerSummary, 0, len(order))
	for _, ticker := range order {
		t := targets[ticker]
		out = append(out, TickerSummary{
			Ticker:        ticker,
			Rows:          len(t),
			TargetReturns: computeColumnStats(t),
			HitRate:       computeHitRate(t),
			MaxDrawdown:   computeMaxDrawdown(t),
			SecondVol:     computeColumnStats(vols[ticker]),
		})
	}
	return out
}
