package clickhouse

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

func sampleRow(ticker string, offset time.Duration) *domain.FeatureRow {
	r := &domain.FeatureRow{
		Ticker:        ticker,
		Date:          t0.Add(offset),
		Mid:           100.5,
		Srs:           100.25,
		SecondReturns: 0.001,
		SecondVol:     0.02,
		TargetReturns: -0.3,
		Calendar: domain.Calendar{
			HourOfDay: 14, MinuteOfHour: 30, SecondOfMinute: int(offset / time.Second),
			DayOfWeek: 0, DayOfMonth: 4, WeekOfYear: 10, MonthOfYear: 3, Year: 2024,
		},
		Changepoints: []domain.ChangepointFeature{
			{LookbackWindow: 21, Location: 0.25, Score: 0.9},
			{LookbackWindow: 63, Location: 0.75, Score: 0.1},
		},
	}
	for i := range r.NormReturns {
		r.NormReturns[i] = float64(i) / 10
	}
	for i := range r.TrendSignals {
		r.TrendSignals[i] = -float64(i) / 10
	}
	return r
}

func TestFeatureStore_InsertBulkAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureStore(conn)
	ctx := context.Background()

	assert.NoError(t, store.InsertBulk(ctx, nil))

	want := sampleRow("AAPL", time.Second)
	require.NoError(t, store.InsertBulk(ctx, []*domain.FeatureRow{want, sampleRow("AAPL", 0), sampleRow("MSFT", 0)}))

	got, err := store.GetByTicker(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, t0, got[0].Date)
	assert.Equal(t, want, got[1])
}

func TestFeatureStore_InsertBulk_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.FeatureRow{sampleRow("AAPL", 0)}))

	err := store.InsertBulk(ctx, []*domain.FeatureRow{sampleRow("AAPL", time.Second), sampleRow("AAPL", 0)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetByTicker(ctx, "AAPL")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFeatureStore_InsertBulk_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureStore(conn)
	err := store.InsertBulk(context.Background(), []*domain.FeatureRow{sampleRow("AAPL", 0), sampleRow("AAPL", 0)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestFeatureStore_GetByTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureStore(conn)
	ctx := context.Background()

	var rows []*domain.FeatureRow
	for i := 0; i < 5; i++ {
		rows = append(rows, sampleRow("AAPL", time.Duration(i)*time.Second))
	}
	require.NoError(t, store.InsertBulk(ctx, rows))

	got, err := store.GetByTimeRange(ctx, "AAPL", t0.Add(time.Second), t0.Add(3*time.Second))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, t0.Add(time.Second), got[0].Date)
	assert.Equal(t, t0.Add(3*time.Second), got[2].Date)
}
