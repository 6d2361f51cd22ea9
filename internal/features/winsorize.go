package features

import (
	"math"

	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/signals"
)

// DropBadTicks removes points whose price is missing, non-finite or not above
// minPrice. Order is preserved.
func DropBadTicks(points []domain.PricePoint, minPrice float64) []domain.PricePoint {
	out := make([]domain.PricePoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Mid) || math.IsInf(p.Mid, 0) || p.Mid <= minPrice {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Envelope returns the clipping bounds mean ± threshold·std of the
// exponentially weighted moments of prices with the given half-life.
func Envelope(prices []float64, halflife, threshold float64) (lower, upper []float64) {
	alpha := signals.AlphaFromHalflife(halflife)
	means := signals.EwmMean(prices, alpha, 0)
	stds := signals.EwmStd(prices, alpha, 0)

	lower = make([]float64, len(prices))
	upper = make([]float64, len(prices))
	for i := range prices {
		lower[i] = means[i] - threshold*stds[i]
		upper[i] = means[i] + threshold*stds[i]
	}
	return lower, upper
}

// Winsorize clips every price into its envelope. Where the envelope is
// undefined (a single observation) the price passes through.
func Winsorize(prices []float64, halflife, threshold float64) []float64 {
	lower, upper := Envelope(prices, halflife, threshold)

	out := make([]float64, len(prices))
	for i, p := range prices {
		switch {
		case math.IsNaN(lower[i]) || math.IsNaN(upper[i]):
			out[i] = p
		case p > upper[i]:
			out[i] = upper[i]
		case p < lower[i]:
			out[i] = lower[i]
		default:
			out[i] = p
		}
	}
	return out
}
