// Package verification checks feature tables: structural invariants of a
// table and agreement between stored and recomputed rows.
package verification

import (
	"context"
	"fmt"
	"math"
	"time"

	"momentum-feature-lab/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// FieldDivergence represents a mismatch between stored and recomputed values.
type FieldDivergence struct {
	Field    string      // feature column name
	Expected interface{} // stored value
	Actual   interface{} // recomputed value
}

// VerificationResult contains the result of verifying one (ticker, date) row.
type VerificationResult struct {
	Ticker      string
	Date        time.Time
	Match       bool              // true if all fields match
	Missing     bool              // stored row absent
	Divergences []FieldDivergence // list of divergent fields
}

// VerificationReport contains results for batch verification.
type VerificationReport struct {
	TotalRows     int                  // rows verified
	MatchedRows   int                  // rows that matched
	DivergentRows int                  // rows with divergences
	MissingRows   int                  // rows absent from the store
	Results       []VerificationResult // non-matching rows only
}

// Verifier compares a recomputed table against stored rows.
type Verifier interface {
	// VerifyAll checks every row of computed against the store.
	VerifyAll(ctx context.Context, computed []*domain.FeatureRow) (*VerificationReport, error)
}

// CompareFeatureRows compares two rows with the same (ticker, date) and
// returns divergences. Uses FloatTolerance for float64 comparisons.
func CompareFeatureRows(stored, computed *domain.FeatureRow) []FieldDivergence {
	var divergences []FieldDivergence

	if stored.Ticker != computed.Ticker {
		divergences = append(divergences, FieldDivergence{"ticker", stored.Ticker, computed.Ticker})
	}
	if !stored.Date.Equal(computed.Date) {
		divergences = append(divergences, FieldDivergence{"date", stored.Date, computed.Date})
	}

	sv, cv := numericFields(stored), numericFields(computed)
	for i := range sv {
		if !floatEquals(sv[i].value, cv[i].value) {
			divergences = append(divergences, FieldDivergence{sv[i].name, sv[i].value, cv[i].value})
		}
	}

	if stored.Calendar != computed.Calendar {
		divergences = append(divergences, FieldDivergence{"calendar", stored.Calendar, computed.Calendar})
	}

	// Change-point windows are compared by window, not position.
	for _, want := range computed.Changepoints {
		loc, score := domain.ChangepointColumns(want.LookbackWindow)
		got, ok := stored.Changepoint(want.LookbackWindow)
		if !ok {
			divergences = append(divergences, FieldDivergence{loc, nil, want.Location})
			continue
		}
		if !floatEquals(got.Location, want.Location) {
			divergences = append(divergences, FieldDivergence{loc, got.Location, want.Location})
		}
		if !floatEquals(got.Score, want.Score) {
			divergences = append(divergences, FieldDivergence{score, got.Score, want.Score})
		}
	}
	for _, have := range stored.Changepoints {
		if _, ok := computed.Changepoint(have.LookbackWindow); !ok {
			loc, _ := domain.ChangepointColumns(have.LookbackWindow)
			divergences = append(divergences, FieldDivergence{loc, have.Location, nil})
		}
	}

	return divergences
}

type namedValue struct {
	name  string
	value float64
}

func numericFields(r *domain.FeatureRow) []namedValue {
	out := []namedValue{
		{"mid", r.Mid},
		{"srs", r.Srs},
		{"second_returns", r.SecondReturns},
		{"second_vol", r.SecondVol},
		{"target_returns", r.TargetReturns},
	}
	for i, v := range r.NormReturns {
		out = append(out, namedValue{domain.HorizonNames[i], v})
	}
	for i, v := range r.TrendSignals {
		out = append(out, namedValue{domain.TrendPairs[i].Column(), v})
	}
	return out
}

// floatEquals compares with FloatTolerance; NaN equals NaN.
func floatEquals(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	if a == b {
		return true
	}
	return math.Abs(a-b) <= FloatTolerance
}

// TableReport lists structural problems of a feature table.
type TableReport struct {
	Rows          int
	DuplicateKeys int // repeated (ticker, date)
	OutOfOrder    int // rows not following (ticker, date) order
	NonFinite     int // rows holding NaN or Inf
	MissingCP     int // rows lacking a configured change-point window
	Issues        []string
}

// OK reports whether the table passed every check.
func (r *TableReport) OK() bool {
	return len(r.Issues) == 0
}

// maxIssues caps the listed issues; counters keep counting.
const maxIssues = 20

// VerifyTable checks that rows form a valid feature table: unique and
// ordered (ticker, date) keys, finite values, and one change-point pair for
// every window in lookbackWindows.
func VerifyTable(rows []*domain.FeatureRow, lookbackWindows []int) *TableReport {
	report := &TableReport{Rows: len(rows)}
	issue := func(format string, args ...interface{}) {
		if len(report.Issues) < maxIssues {
			report.Issues = append(report.Issues, fmt.Sprintf(format, args...))
		}
	}

	type key struct {
		ticker string
		date   int64
	}
	seen := make(map[key]struct{}, len(rows))

	for i, r := range rows {
		k := key{r.Ticker, r.Date.UnixNano()}
		if _, dup := seen[k]; dup {
			report.DuplicateKeys++
			issue("row %d: duplicate key (%s, %s)", i, r.Ticker, r.Date.Format(time.RFC3339Nano))
		}
		seen[k] = struct{}{}

		if i > 0 {
			prev := rows[i-1]
			if r.Ticker < prev.Ticker || (r.Ticker == prev.Ticker && r.Date.Before(prev.Date)) {
				report.OutOfOrder++
				issue("row %d: (%s, %s) follows (%s, %s)", i,
					r.Ticker, r.Date.Format(time.RFC3339Nano), prev.Ticker, prev.Date.Format(time.RFC3339Nano))
			}
		}

		for _, f := range numericFields(r) {
			if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
				report.NonFinite++
				issue("row %d: %s is %v", i, f.name, f.value)
				break
			}
		}

		for _, l := range lookbackWindows {
			cp, ok := r.Changepoint(l)
			if !ok {
				report.MissingCP++
				issue("row %d: no change point for lbw=%d", i, l)
				break
			}
			if math.IsNaN(cp.Location) || math.IsNaN(cp.Score) {
				report.NonFinite++
				issue("row %d: change point for lbw=%d is NaN", i, l)
				break
			}
		}
	}
	return report
}
