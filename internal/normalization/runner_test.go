package normalization

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/storage"
	"momentum-feature-lab/internal/storage/memory"
)

var t0 = time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func tick(ticker string, sec int, mid *float64) *domain.PriceTick {
	return &domain.PriceTick{Ticker: ticker, Timestamp: t0.Add(time.Duration(sec) * time.Second), Mid: mid}
}

func TestBuildSeries_Basic(t *testing.T) {
	ticks := []*domain.PriceTick{
		tick("MSFT", 1, ptr(301.0)),
		tick("AAPL", 1, ptr(101.0)),
		tick("AAPL", 0, ptr(100.0)),
		tick("MSFT", 0, ptr(300.0)),
	}

	result := BuildSeries(ticks)

	if len(result) != 2 {
		t.Fatalf("Expected 2 series, got %d", len(result))
	}
	if result[0].Ticker != "AAPL" || result[1].Ticker != "MSFT" {
		t.Errorf("Expected series ordered by ticker, got %s, %s", result[0].Ticker, result[1].Ticker)
	}
	mids := result[0].Mids()
	if len(mids) != 2 || mids[0] != 100 || mids[1] != 101 {
		t.Errorf("AAPL: expected [100 101], got %v", mids)
	}
	if ticks[0].Ticker != "MSFT" {
		t.Errorf("Input slice must not be reordered")
	}
}

func TestBuildSeries_SameTimestamp(t *testing.T) {
	// Same timestamp -> LAST(mid) in input order
	ticks := []*domain.PriceTick{
		tick("AAPL", 0, ptr(1.0)),
		tick("AAPL", 5, ptr(2.0)),
		tick("AAPL", 5, ptr(3.0)),
		tick("AAPL", 5, ptr(4.0)),
	}

	result := BuildSeries(ticks)

	if len(result) != 1 || result[0].Len() != 2 {
		t.Fatalf("Expected 1 series with 2 points, got %+v", result)
	}
	if result[0].Points[1].Mid != 4.0 {
		t.Errorf("Expected LAST mid 4.0, got %v", result[0].Points[1].Mid)
	}
}

func TestBuildSeries_NilMidIsNaN(t *testing.T) {
	result := BuildSeries([]*domain.PriceTick{tick("AAPL", 0, nil)})

	if len(result) != 1 || !math.IsNaN(result[0].Points[0].Mid) {
		t.Errorf("Expected a NaN point for a nil mid, got %+v", result)
	}
}

func TestBuildSeries_StrictlyIncreasing(t *testing.T) {
	ticks := []*domain.PriceTick{
		tick("AAPL", 3, ptr(1.0)),
		tick("AAPL", 1, ptr(1.0)),
		tick("AAPL", 3, ptr(1.0)),
		tick("AAPL", 2, ptr(1.0)),
	}

	points := BuildSeries(ticks)[0].Points
	for i := 1; i < len(points); i++ {
		if !points[i].Timestamp.After(points[i-1].Timestamp) {
			t.Errorf("Timestamps not strictly increasing at %d", i)
		}
	}
}

func TestBuildSeries_Empty(t *testing.T) {
	if result := BuildSeries(nil); result != nil {
		t.Errorf("Expected nil for empty input, got %v", result)
	}
}

func TestRunner_LoadSeries(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPriceTickStore()
	ticks := []*domain.PriceTick{
		tick("AAPL", 0, ptr(100.0)),
		tick("AAPL", 1, nil),
		tick("AAPL", 2, ptr(102.0)),
		tick("MSFT", 0, ptr(300.0)),
	}
	if err := store.InsertBulk(ctx, ticks); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	runner := NewRunner(store)

	tickers, err := runner.Tickers(ctx)
	if err != nil || len(tickers) != 2 {
		t.Fatalf("Tickers: expected 2, got %v (%v)", tickers, err)
	}

	series, err := runner.LoadSeries(ctx, "AAPL")
	if err != nil {
		t.Fatalf("LoadSeries failed: %v", err)
	}
	if series.Ticker != "AAPL" || series.Len() != 3 {
		t.Errorf("Expected 3 AAPL points, got %s with %d", series.Ticker, series.Len())
	}
	if !math.IsNaN(series.Points[1].Mid) {
		t.Errorf("Expected missing mid to load as NaN")
	}
}

func TestRunner_LoadSeries_NotFound(t *testing.T) {
	runner := NewRunner(memory.NewPriceTickStore())

	_, err := runner.LoadSeries(context.Background(), "NONE")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
