package features

import (
	"math"

	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/signals"
)

// NormalizedReturn computes returns(srs, h) / vol / sqrt(h).
// Positions without h steps of history are NaN.
func NormalizedReturn(p signals.Primitives, srs, vol []float64, horizon int) []float64 {
	raw := p.Returns(srs, horizon)
	scale := math.Sqrt(float64(horizon))

	out := make([]float64, len(srs))
	for i := range out {
		out[i] = raw[i] / vol[i] / scale
	}
	return out
}

// NormalizedReturns computes one normalized return column per horizon, in
// the order of domain.HorizonNames. Horizons are independent of each other.
func NormalizedReturns(p signals.Primitives, srs, vol []float64, horizons [domain.NumHorizons]int) [domain.NumHorizons][]float64 {
	var out [domain.NumHorizons][]float64
	for i, h := range horizons {
		out[i] = NormalizedReturn(p, srs, vol, h)
	}
	return out
}
