package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/storage"
)

// PriceTickStore is an in-memory implementation of storage.PriceTickStore.
type PriceTickStore struct {
	mu   sync.RWMutex
	data map[string]map[int64]*domain.PriceTick // ticker -> unix nanos -> tick
}

// NewPriceTickStore creates a new in-memory price tick store.
func NewPriceTickStore() *PriceTickStore {
	return &PriceTickStore{
		data: make(map[string]map[int64]*domain.PriceTick),
	}
}

// InsertBulk adds multiple ticks. Fails entire batch on duplicate.
func (s *PriceTickStore) InsertBulk(_ context.Context, ticks []*domain.PriceTick) error {
	if len(ticks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[string]map[int64]struct{})
	for _, t := range ticks {
		if t == nil || t.Ticker == "" || t.Timestamp.IsZero() {
			return storage.ErrInvalidInput
		}
		ns := t.Timestamp.UnixNano()
		if _, exists := s.data[t.Ticker][ns]; exists {
			return storage.ErrDuplicateKey
		}
		if batch[t.Ticker] == nil {
			batch[t.Ticker] = make(map[int64]struct{})
		}
		if _, exists := batch[t.Ticker][ns]; exists {
			return storage.ErrDuplicateKey
		}
		batch[t.Ticker][ns] = struct{}{}
	}

	for _, t := range ticks {
		if s.data[t.Ticker] == nil {
			s.data[t.Ticker] = make(map[int64]*domain.PriceTick)
		}
		s.data[t.Ticker][t.Timestamp.UnixNano()] = copyTick(t)
	}
	return nil
}

// Tickers returns every distinct ticker, sorted ascending.
func (s *PriceTickStore) Tickers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]string, 0, len(s.data))
	for ticker := range s.data {
		result = append(result, ticker)
	}
	sort.Strings(result)
	return result, nil
}

// GetByTicker retrieves all ticks for a ticker, ordered by timestamp ASC.
func (s *PriceTickStore) GetByTicker(_ context.Context, ticker string) ([]*domain.PriceTick, error) {
	return s.collect(ticker, func(*domain.PriceTick) bool { return true }), nil
}

// GetByTimeRange retrieves ticks for a ticker within [start, end] (inclusive).
func (s *PriceTickStore) GetByTimeRange(_ context.Context, ticker string, start, end time.Time) ([]*domain.PriceTick, error) {
	return s.collect(ticker, func(t *domain.PriceTick) bool {
		return !t.Timestamp.Before(start) && !t.Timestamp.After(end)
	}), nil
}

func (s *PriceTickStore) collect(ticker string, keep func(*domain.PriceTick) bool) []*domain.PriceTick {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceTick
	for _, t := range s.data[ticker] {
		if keep(t) {
			result = append(result, copyTick(t))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result
}

func copyTick(t *domain.PriceTick) *domain.PriceTick {
	c := *t
	if t.Mid != nil {
		mid := *t.Mid
		c.Mid = &mid
	}
	return &c
}

var _ storage.PriceTickStore = (*PriceTickStore)(nil)
