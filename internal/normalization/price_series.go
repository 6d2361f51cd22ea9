package normalization

import (
	"math"
	"slices"

	"momentum-feature-lab/internal/domain"
)

// BuildSeries groups ticks into one price series per ticker, ordered by
// ticker and then timestamp. This is the single place where a raw index is
// reduced to a strictly increasing timestamp index.
//
// Aggregation for same (ticker, timestamp):
//   - mid = LAST(mid) in input order
//
// A nil mid becomes a NaN point; dropping it is left to the feature stage.
func BuildSeries(ticks []*domain.PriceTick) []*domain.PriceSeries {
	if len(ticks) == 0 {
		return nil
	}

	sorted := slices.Clone(ticks)
	SortTicks(sorted)

	var result []*domain.PriceSeries
	var current *domain.PriceSeries

	for _, t := range sorted {
		if current == nil || current.Ticker != t.Ticker {
			current = &domain.PriceSeries{Ticker: t.Ticker}
			result = append(result, current)
		}

		point := domain.PricePoint{Timestamp: t.Timestamp, Mid: midOrNaN(t.Mid)}
		if n := len(current.Points); n > 0 && current.Points[n-1].Timestamp.Equal(t.Timestamp) {
			current.Points[n-1] = point // LAST(mid)
			continue
		}
		current.Points = append(current.Points, point)
	}

	return result
}

func midOrNaN(mid *float64) float64 {
	if mid == nil {
		return math.NaN()
	}
	return *mid
}
