package features

import (
	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/signals"
)

// TrendSignals evaluates the trend primitive for every pair of the bank,
// in the order of domain.TrendPairs.
func TrendSignals(p signals.Primitives, srs []float64) [domain.NumTrendPairs][]float64 {
	var out [domain.NumTrendPairs][]float64
	for i, pair := range domain.TrendPairs {
		out[i] = p.TrendSignal(srs, pair.Short, pair.Long)
	}
	return out
}
