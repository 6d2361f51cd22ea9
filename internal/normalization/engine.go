package normalization

import (
	"context"

	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/storage"
)

// SeriesLoader provides per-asset price series.
type SeriesLoader interface {
	// Tickers lists the assets available for loading.
	Tickers(ctx context.Context) ([]string, error)

	// LoadSeries returns the price series of one ticker.
	// Returns storage.ErrNotFound if the ticker has no ticks.
	LoadSeries(ctx context.Context, ticker string) (*domain.PriceSeries, error)
}

// Runner implements SeriesLoader on top of a price tick store.
type Runner struct {
	tickStore storage.PriceTickStore
}

// NewRunner creates a new normalization runner.
func NewRunner(tickStore storage.PriceTickStore) *Runner {
	return &Runner{tickStore: tickStore}
}

var _ SeriesLoader = (*Runner)(nil)
