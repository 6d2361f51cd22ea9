package normalization

import (
	"slices"

	"momentum-feature-lab/internal/domain"
)

// SortTicks orders ticks by (ticker ASC, timestamp ASC). Ticks sharing a key
// keep their input order, so the last of them is the latest observation.
func SortTicks(ticks []*domain.PriceTick) {
	slices.SortStableFunc(ticks, compareTicks)
}

// compareTicks returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
func compareTicks(a, b *domain.PriceTick) int {
	if a.Ticker != b.Ticker {
		if a.Ticker < b.Ticker {
			return -1
		}
		return 1
	}
	return a.Timestamp.Compare(b.Timestamp)
}
