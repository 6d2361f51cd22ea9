package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momentum-feature-lab/internal/domain"
)

func TestDropBadTicks_ZeroPrice(t *testing.T) {
	s := seriesOf("AAPL", []float64{1.0, 1.0, 1.0, 0.0, 1.0})

	got := DropBadTicks(s.Points, 1e-8)

	require.Len(t, got, 4)
	for _, p := range got {
		assert.NotEqual(t, s.Points[3].Timestamp, p.Timestamp, "zero tick must be dropped")
	}
	assert.Equal(t, s.Points[4].Timestamp, got[3].Timestamp, "order preserved")
}

func TestDropBadTicks_MissingAndTiny(t *testing.T) {
	points := []domain.PricePoint{
		{Mid: math.NaN()},
		{Mid: 5e-9},
		{Mid: math.Inf(1)},
		{Mid: -3},
		{Mid: 2},
	}

	got := DropBadTicks(points, 1e-8)

	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].Mid)
}

func TestWinsorize_WithinEnvelope(t *testing.T) {
	prices := walk(1000, 11)
	prices[300] /= 50 // outlier dip
	prices[700] *= 50 // outlier spike

	lower, upper := Envelope(prices, 252, 5)
	got := Winsorize(prices, 252, 5)

	require.Len(t, got, len(prices))
	for i, v := range got {
		if math.IsNaN(lower[i]) {
			assert.Equal(t, prices[i], v, "undefined envelope passes through")
			continue
		}
		assert.GreaterOrEqual(t, v, lower[i]-1e-9, "index %d", i)
		assert.LessOrEqual(t, v, upper[i]+1e-9, "index %d", i)
	}
	assert.Greater(t, got[300], prices[300], "dip is clipped")
	assert.Less(t, got[700], prices[700], "spike is clipped")
}

func TestWinsorize_FixedPointWithinBounds(t *testing.T) {
	prices := walk(2000, 5)

	once := Winsorize(prices, 252, 5)
	require.Equal(t, prices, once, "a calm walk is never clipped")

	twice := Winsorize(once, 252, 5)
	assert.Equal(t, once, twice)
}

func TestWinsorize_Empty(t *testing.T) {
	assert.Empty(t, Winsorize(nil, 252, 5))
}
