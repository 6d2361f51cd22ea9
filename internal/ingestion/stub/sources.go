package stub

import (
	"context"

	"momentum-feature-lab/internal/domain"
)

// StubPriceSource returns fixed in-memory ticks for testing.
// Ticks can be intentionally unordered to test sorting.
// Implements ingestion.PriceSource interface.
type StubPriceSource struct {
	ticks []*domain.PriceTick
	err   error
}

// NewStubPriceSource creates a new stub price source with the given ticks.
func NewStubPriceSource(ticks []*domain.PriceTick) *StubPriceSource {
	return &StubPriceSource{ticks: ticks}
}

// NewFailingPriceSource creates a stub source whose Fetch always fails.
func NewFailingPriceSource(err error) *StubPriceSource {
	return &StubPriceSource{err: err}
}

// Fetch returns copies of all ticks to prevent mutation.
func (s *StubPriceSource) Fetch(_ context.Context) ([]*domain.PriceTick, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make([]*domain.PriceTick, 0, len(s.ticks))
	for _, t := range s.ticks {
		c := *t
		result = append(result, &c)
	}
	return result, nil
}
