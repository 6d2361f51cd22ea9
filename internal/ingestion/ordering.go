package ingestion

import (
	"errors"
	"sort"

	"momentum-feature-lab/internal/domain"
)

// ErrInvalidOrdering is returned when ticks are not properly ordered.
var ErrInvalidOrdering = errors.New("ticks are not in deterministic order")

// SortTicks orders ticks by (ticker ASC, timestamp ASC). Equal keys keep
// their input order.
func SortTicks(ticks []*domain.PriceTick) {
	sort.SliceStable(ticks, func(i, j int) bool {
		return compareTicks(ticks[i], ticks[j]) < 0
	})
}

// DedupeTicks keeps the last of each run of ticks sharing (ticker, timestamp).
// Ticks must be sorted.
func DedupeTicks(ticks []*domain.PriceTick) []*domain.PriceTick {
	out := ticks[:0:0]
	for _, t := range ticks {
		if n := len(out); n > 0 && compareTicks(out[n-1], t) == 0 {
			out[n-1] = t
			continue
		}
		out = append(out, t)
	}
	return out
}

// ValidateTickOrdering checks that ticks are strictly ordered.
// Returns ErrInvalidOrdering if not.
func ValidateTickOrdering(ticks []*domain.PriceTick) error {
	for i := 1; i < len(ticks); i++ {
		if compareTicks(ticks[i-1], ticks[i]) >= 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// compareTicks returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
//
// Order: (ticker ASC, timestamp ASC)
func compareTicks(a, b *domain.PriceTick) int {
	if a.Ticker != b.Ticker {
		if a.Ticker < b.Ticker {
			return -1
		}
		return 1
	}
	return a.Timestamp.Compare(b.Timestamp)
}
