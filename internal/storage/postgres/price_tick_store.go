package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/storage"
)

// PriceTickStore implements storage.PriceTickStore using PostgreSQL.
type PriceTickStore struct {
	pool *Pool
}

// NewPriceTickStore creates a new PriceTickStore.
func NewPriceTickStore(pool *Pool) *PriceTickStore {
	return &PriceTickStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PriceTickStore = (*PriceTickStore)(nil)

// InsertBulk copies ticks in one transaction. Fails entire batch on any duplicate.
func (s *PriceTickStore) InsertBulk(ctx context.Context, ticks []*domain.PriceTick) error {
	if len(ticks) == 0 {
		return nil
	}
	for _, t := range ticks {
		if t == nil || t.Ticker == "" || t.Timestamp.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"price_ticks"},
		[]string{"ticker", "ts", "mid"},
		pgx.CopyFromSlice(len(ticks), func(i int) ([]any, error) {
			return []any{ticks[i].Ticker, ticks[i].Timestamp, ticks[i].Mid}, nil
		}),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("copy price ticks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Tickers returns every distinct ticker, sorted ascending.
func (s *PriceTickStore) Tickers(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT ticker FROM price_ticks ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// GetByTicker retrieves all ticks for a ticker, ordered by timestamp ASC.
func (s *PriceTickStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.PriceTick, error) {
	query := `
		SELECT ticker, ts, mid
		FROM price_ticks
		WHERE ticker = $1
		ORDER BY ts ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("get ticks by ticker: %w", err)
	}
	return scanTicks(rows)
}

// GetByTimeRange retrieves ticks for a ticker within [start, end] (inclusive).
func (s *PriceTickStore) GetByTimeRange(ctx context.Context, ticker string, start, end time.Time) ([]*domain.PriceTick, error) {
	query := `
		SELECT ticker, ts, mid
		FROM price_ticks
		WHERE ticker = $1 AND ts >= $2 AND ts <= $3
		ORDER BY ts ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("get ticks by time range: %w", err)
	}
	return scanTicks(rows)
}

// scanTicks scans and closes rows.
func scanTicks(rows pgx.Rows) ([]*domain.PriceTick, error) {
	ticks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.PriceTick, error) {
		var t domain.PriceTick
		if err := row.Scan(&t.Ticker, &t.Timestamp, &t.Mid); err != nil {
			return nil, err
		}
		t.Timestamp = t.Timestamp.UTC()
		return &t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan price ticks: %w", err)
	}
	return ticks, nil
}
