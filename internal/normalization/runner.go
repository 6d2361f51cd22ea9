package normalization

import (
	"context"
	"fmt"

	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/storage"
)

// Tickers lists every ticker in the tick store.
func (r *Runner) Tickers(ctx context.Context) ([]string, error) {
	return r.tickStore.Tickers(ctx)
}

// LoadSeries processes a single ticker.
// Steps:
//  1. Load ticks from store
//  2. Sort by (ticker, timestamp)
//  3. Collapse duplicate timestamps into one point
func (r *Runner) LoadSeries(ctx context.Context, ticker string) (*domain.PriceSeries, error) {
	ticks, err := r.tickStore.GetByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}

	series := BuildSeries(ticks)
	if len(series) == 0 {
		return nil, fmt.Errorf("ticker %s: %w", ticker, storage.ErrNotFound)
	}
	return series[0], nil
}
