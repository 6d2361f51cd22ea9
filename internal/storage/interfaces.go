package storage

import (
	"context"
	"time"

	"momentum-feature-lab/internal/domain"
)

// PriceTickStore provides access to price_ticks storage.
type PriceTickStore interface {
	// InsertBulk adds multiple ticks atomically.
	// Fails entire batch on any duplicate (ticker, timestamp).
	InsertBulk(ctx context.Context, ticks []*domain.PriceTick) error

	// Tickers returns every distinct ticker, sorted ascending.
	Tickers(ctx context.Context) ([]string, error)

	// GetByTicker retrieves all ticks for a ticker, ordered by timestamp ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.PriceTick, error)

	// GetByTimeRange retrieves ticks for a ticker within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, ticker string, start, end time.Time) ([]*domain.PriceTick, error)
}

// FeatureStore provides access to the assembled feature table.
type FeatureStore interface {
	// InsertBulk adds multiple rows atomically.
	// Fails entire batch on any duplicate (ticker, date).
	InsertBulk(ctx context.Context, rows []*domain.FeatureRow) error

	// GetByTicker retrieves all rows for a ticker, ordered by date ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.FeatureRow, error)

	// GetByTimeRange retrieves rows for a ticker within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, ticker string, start, end time.Time) ([]*domain.FeatureRow, error)
}
