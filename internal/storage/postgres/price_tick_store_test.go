package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/storage"
)

var t0 = time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)

func TestPriceTickStore_InsertBulkAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceTickStore(pool)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, nil))

	ticks := []*domain.PriceTick{
		{Ticker: "AAPL", Timestamp: t0.Add(time.Second), Mid: ptr(101.0)},
		{Ticker: "AAPL", Timestamp: t0, Mid: ptr(100.0)},
		{Ticker: "AAPL", Timestamp: t0.Add(2 * time.Second)},
		{Ticker: "MSFT", Timestamp: t0, Mid: ptr(300.0)},
	}
	require.NoError(t, store.InsertBulk(ctx, ticks))

	got, err := store.GetByTicker(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, t0, got[0].Timestamp)
	assert.Equal(t, 100.0, *got[0].Mid)
	assert.Equal(t, 101.0, *got[1].Mid)
	assert.Nil(t, got[2].Mid)

	tickers, err := store.Tickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)
}

func TestPriceTickStore_InsertBulk_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceTickStore(pool)
	ctx := context.Background()

	ticks := []*domain.PriceTick{{Ticker: "AAPL", Timestamp: t0, Mid: ptr(1.0)}}
	require.NoError(t, store.InsertBulk(ctx, ticks))

	err := store.InsertBulk(ctx, []*domain.PriceTick{
		{Ticker: "AAPL", Timestamp: t0.Add(time.Second), Mid: ptr(2.0)},
		{Ticker: "AAPL", Timestamp: t0, Mid: ptr(3.0)},
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetByTicker(ctx, "AAPL")
	require.NoError(t, err)
	assert.Len(t, got, 1, "failed batch must roll back")
}

func TestPriceTickStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceTickStore(pool)
	ctx := context.Background()

	var ticks []*domain.PriceTick
	for i := 0; i < 5; i++ {
		ticks = append(ticks, &domain.PriceTick{Ticker: "AAPL", Timestamp: t0.Add(time.Duration(i) * time.Minute), Mid: ptr(float64(i))})
	}
	require.NoError(t, store.InsertBulk(ctx, ticks))

	got, err := store.GetByTimeRange(ctx, "AAPL", t0.Add(time.Minute), t0.Add(3*time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1.0, *got[0].Mid)
	assert.Equal(t, 3.0, *got[2].Mid)
}

func TestPriceTickStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceTickStore(pool)
	err := store.InsertBulk(context.Background(), []*domain.PriceTick{{Timestamp: t0}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
