package signals

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmaAligned_ShortInput(t *testing.T) {
	got := emaAligned([]float64{1, 2, 3}, 5)
	require.Len(t, got, 3)
	for _, v := range got {
		assert.True(t, math.IsNaN(v))
	}
}

func TestEmaAligned_ConstantSeries(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 7
	}

	got := emaAligned(values, 9)

	require.Len(t, got, len(values))
	assert.InDelta(t, 7.0, got[len(got)-1], 1e-9)
}

func TestIndicatorMACD_TrendSignalAligned(t *testing.T) {
	m := NewIndicatorMACD(Options{TrendVolWindow: 10, TrendNormWindow: 20})
	srs := randomWalk(400, 9, 20)

	got := m.TrendSignal(srs, 3, 12)

	require.Len(t, got, len(srs))
	tail := got[len(got)-50:]
	for i, v := range tail {
		assert.False(t, math.IsNaN(v), "tail index %d", i)
	}
}
