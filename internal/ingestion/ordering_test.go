package ingestion

import (
	"errors"
	"testing"
	"time"

	"momentum-feature-lab/internal/domain"
)

var t0 = time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func tick(ticker string, sec int, mid float64) *domain.PriceTick {
	return &domain.PriceTick{Ticker: ticker, Timestamp: t0.Add(time.Duration(sec) * time.Second), Mid: ptr(mid)}
}

func TestSortTicks(t *testing.T) {
	// Intentionally unordered ticks
	ticks := []*domain.PriceTick{
		tick("MSFT", 1, 4),
		tick("AAPL", 2, 3),
		tick("AAPL", 0, 1),
		tick("MSFT", 0, 5),
		tick("AAPL", 1, 2),
	}

	SortTicks(ticks)

	expected := []struct {
		ticker string
		sec    int
	}{
		{"AAPL", 0},
		{"AAPL", 1},
		{"AAPL", 2},
		{"MSFT", 0},
		{"MSFT", 1},
	}
	for i, exp := range expected {
		want := t0.Add(time.Duration(exp.sec) * time.Second)
		if ticks[i].Ticker != exp.ticker || !ticks[i].Timestamp.Equal(want) {
			t.Errorf("Index %d: got (%s, %v), want (%s, %v)", i, ticks[i].Ticker, ticks[i].Timestamp, exp.ticker, want)
		}
	}
}

func TestSortTicks_Empty(t *testing.T) {
	var ticks []*domain.PriceTick
	SortTicks(ticks) // Should not panic
}

func TestDedupeTicks_KeepsLast(t *testing.T) {
	ticks := []*domain.PriceTick{
		tick("AAPL", 0, 1),
		tick("AAPL", 1, 2),
		tick("AAPL", 1, 3),
		tick("AAPL", 2, 4),
	}

	got := DedupeTicks(ticks)

	if len(got) != 3 {
		t.Fatalf("Expected 3 ticks, got %d", len(got))
	}
	if *got[1].Mid != 3 {
		t.Errorf("Expected the later duplicate (mid 3) to win, got %v", *got[1].Mid)
	}
	if err := ValidateTickOrdering(got); err != nil {
		t.Errorf("Deduped ticks should be strictly ordered: %v", err)
	}
}

func TestValidateTickOrdering(t *testing.T) {
	ordered := []*domain.PriceTick{tick("AAPL", 0, 1), tick("AAPL", 1, 1), tick("MSFT", 0, 1)}
	if err := ValidateTickOrdering(ordered); err != nil {
		t.Errorf("Expected nil for ordered ticks, got %v", err)
	}

	unordered := []*domain.PriceTick{tick("AAPL", 1, 1), tick("AAPL", 0, 1)}
	if err := ValidateTickOrdering(unordered); !errors.Is(err, ErrInvalidOrdering) {
		t.Errorf("Expected ErrInvalidOrdering, got %v", err)
	}

	duplicate := []*domain.PriceTick{tick("AAPL", 0, 1), tick("AAPL", 0, 2)}
	if err := ValidateTickOrdering(duplicate); !errors.Is(err, ErrInvalidOrdering) {
		t.Errorf("Expected ErrInvalidOrdering for duplicate key, got %v", err)
	}
}
