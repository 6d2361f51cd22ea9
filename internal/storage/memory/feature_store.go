package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/storage"
)

// FeatureStore is an in-memory implementation of storage.FeatureStore.
type FeatureStore struct {
	mu   sync.RWMutex
	data map[featureKey]*domain.FeatureRow
}

type featureKey struct {
	ticker string
	date   int64
}

// NewFeatureStore creates a new in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{
		data: make(map[featureKey]*domain.FeatureRow),
	}
}

// InsertBulk adds multiple rows. Fails entire batch on duplicate.
func (s *FeatureStore) InsertBulk(_ context.Context, rows []*domain.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[featureKey]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.Ticker == "" {
			return storage.ErrInvalidInput
		}
		key := featureKey{r.Ticker, r.Date.UnixNano()}
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batch[key]; exists {
			return storage.ErrDuplicateKey
		}
		batch[key] = struct{}{}
	}

	for _, r := range rows {
		s.data[featureKey{r.Ticker, r.Date.UnixNano()}] = copyRow(r)
	}
	return nil
}

// GetByTicker retrieves all rows for a ticker, ordered by date ASC.
func (s *FeatureStore) GetByTicker(_ context.Context, ticker string) ([]*domain.FeatureRow, error) {
	return s.collect(ticker, time.Time{}, time.Time{}), nil
}

// GetByTimeRange retrieves rows for a ticker within [start, end] (inclusive).
func (s *FeatureStore) GetByTimeRange(_ context.Context, ticker string, start, end time.Time) ([]*domain.FeatureRow, error) {
	if end.Before(start) {
		return nil, nil
	}
	return s.collect(ticker, start, end), nil
}

// collect returns copies of the ticker's rows; zero bounds are open.
func (s *FeatureStore) collect(ticker string, start, end time.Time) []*domain.FeatureRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FeatureRow
	for key, r := range s.data {
		if key.ticker != ticker {
			continue
		}
		if !start.IsZero() && r.Date.Before(start) {
			continue
		}
		if !end.IsZero() && r.Date.After(end) {
			continue
		}
		result = append(result, copyRow(r))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}

func copyRow(r *domain.FeatureRow) *domain.FeatureRow {
	c := *r
	c.Changepoints = slices.Clone(r.Changepoints)
	return &c
}

var _ storage.FeatureStore = (*FeatureStore)(nil)
