package verification

import (
	"context"
	"fmt"

	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/storage"
)

// StoreVerifier implements Verifier against a feature store.
type StoreVerifier struct {
	store storage.FeatureStore
}

// NewStoreVerifier creates a new StoreVerifier.
func NewStoreVerifier(store storage.FeatureStore) *StoreVerifier {
	return &StoreVerifier{store: store}
}

// VerifyAll loads the stored rows of every ticker in computed once and
// compares them row by row.
func (v *StoreVerifier) VerifyAll(ctx context.Context, computed []*domain.FeatureRow) (*VerificationReport, error) {
	report := &VerificationReport{}

	var stored map[int64]*domain.FeatureRow
	ticker := ""
	for _, row := range computed {
		if stored == nil || row.Ticker != ticker {
			ticker = row.Ticker
			var err error
			stored, err = v.loadTicker(ctx, ticker)
			if err != nil {
				return nil, err
			}
		}

		report.TotalRows++
		s, ok := stored[row.Date.UnixNano()]
		if !ok {
			report.MissingRows++
			report.Results = append(report.Results, VerificationResult{Ticker: row.Ticker, Date: row.Date, Missing: true})
			continue
		}

		divergences := CompareFeatureRows(s, row)
		if len(divergences) == 0 {
			report.MatchedRows++
			continue
		}
		report.DivergentRows++
		report.Results = append(report.Results, VerificationResult{
			Ticker:      row.Ticker,
			Date:        row.Date,
			Divergences: divergences,
		})
	}

	return report, nil
}

func (v *StoreVerifier) loadTicker(ctx context.Context, ticker string) (map[int64]*domain.FeatureRow, error) {
	rows, err := v.store.GetByTicker(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("load stored features %s: %w", ticker, err)
	}
	byDate := make(map[int64]*domain.FeatureRow, len(rows))
	for _, r := range rows {
		byDate[r.Date.UnixNano()] = r
	}
	return byDate, nil
}

var _ Verifier = (*StoreVerifier)(nil)
