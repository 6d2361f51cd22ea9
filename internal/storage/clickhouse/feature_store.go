package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/storage"
)

// FeatureStore implements storage.FeatureStore using ClickHouse.
// Change-point annotations are stored as parallel arrays (cp_windows, cp_rl,
// cp_score) so any set of lookback windows fits one schema.
type FeatureStore struct {
	conn *Conn
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(conn *Conn) *FeatureStore {
	return &FeatureStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

// featureColumns is the column order used for both insert and select.
var featureColumns = append(domain.FeatureColumns(), "cp_windows", "cp_rl", "cp_score")

var selectFeatures = "SELECT " + strings.Join(featureColumns, ", ") + " FROM features"

// InsertBulk adds multiple rows. Fails entire batch on duplicate (ticker, date).
func (s *FeatureStore) InsertBulk(ctx context.Context, rows []*domain.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	// Check for intra-batch duplicates and collect the date span per ticker.
	type key struct {
		ticker string
		date   int64
	}
	type span struct{ min, max time.Time }
	seen := make(map[key]struct{}, len(rows))
	spans := make(map[string]*span)
	for _, r := range rows {
		if r == nil || r.Ticker == "" {
			return storage.ErrInvalidInput
		}
		k := key{r.Ticker, r.Date.UnixNano()}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}

		sp, ok := spans[r.Ticker]
		if !ok {
			spans[r.Ticker] = &span{r.Date, r.Date}
			continue
		}
		if r.Date.Before(sp.min) {
			sp.min = r.Date
		}
		if r.Date.After(sp.max) {
			sp.max = r.Date
		}
	}

	// Check for duplicates against existing rows, one range query per ticker.
	for ticker, sp := range spans {
		existing, err := s.existingDates(ctx, ticker, sp.min, sp.max)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		for _, d := range existing {
			if _, dup := seen[key{ticker, d.UnixNano()}]; dup {
				return storage.ErrDuplicateKey
			}
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO features ("+strings.Join(featureColumns, ", ")+")")
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		if err := batch.Append(rowValues(r)...); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByTicker retrieves all rows for a ticker, ordered by date ASC.
func (s *FeatureStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.FeatureRow, error) {
	rows, err := s.conn.Query(ctx, selectFeatures+" WHERE ticker = ? ORDER BY date ASC", ticker)
	if err != nil {
		return nil, fmt.Errorf("query by ticker: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// GetByTimeRange retrieves rows for a ticker within [start, end] (inclusive).
func (s *FeatureStore) GetByTimeRange(ctx context.Context, ticker string, start, end time.Time) ([]*domain.FeatureRow, error) {
	rows, err := s.conn.Query(ctx, selectFeatures+" WHERE ticker = ? AND date >= ? AND date <= ? ORDER BY date ASC", ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

func (s *FeatureStore) existingDates(ctx context.Context, ticker string, start, end time.Time) ([]time.Time, error) {
	rows, err := s.conn.Query(ctx, "SELECT date FROM features WHERE ticker = ? AND date >= ? AND date <= ?", ticker, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// rowValues flattens a row in featureColumns order.
func rowValues(r *domain.FeatureRow) []any {
	vals := make([]any, 0, len(featureColumns))
	vals = append(vals, r.Ticker, r.Mid, r.Srs, r.SecondReturns, r.SecondVol, r.TargetReturns)
	for _, v := range r.NormReturns {
		vals = append(vals, v)
	}
	for _, v := range r.TrendSignals {
		vals = append(vals, v)
	}
	c := r.Calendar
	vals = append(vals,
		int32(c.HourOfDay), int32(c.MinuteOfHour), int32(c.SecondOfMinute), int32(c.DayOfWeek),
		int32(c.DayOfMonth), int32(c.WeekOfYear), int32(c.MonthOfYear), int32(c.Year),
		r.Date,
	)

	windows := make([]int32, len(r.Changepoints))
	locations := make([]float64, len(r.Changepoints))
	scores := make([]float64, len(r.Changepoints))
	for i, cp := range r.Changepoints {
		windows[i] = int32(cp.LookbackWindow)
		locations[i] = cp.Location
		scores[i] = cp.Score
	}
	return append(vals, windows, locations, scores)
}

// scanFeatureRows scans multiple rows in featureColumns order.
func scanFeatureRows(rows chRows) ([]*domain.FeatureRow, error) {
	var result []*domain.FeatureRow

	for rows.Next() {
		var r domain.FeatureRow
		var cal [8]int32
		var windows []int32
		var locations, scores []float64

		dest := []any{&r.Ticker, &r.Mid, &r.Srs, &r.SecondReturns, &r.SecondVol, &r.TargetReturns}
		for i := range r.NormReturns {
			dest = append(dest, &r.NormReturns[i])
		}
		for i := range r.TrendSignals {
			dest = append(dest, &r.TrendSignals[i])
		}
		for i := range cal {
			dest = append(dest, &cal[i])
		}
		dest = append(dest, &r.Date, &windows, &locations, &scores)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}

		r.Date = r.Date.UTC()
		r.Calendar = domain.Calendar{
			HourOfDay:      int(cal[0]),
			MinuteOfHour:   int(cal[1]),
			SecondOfMinute: int(cal[2]),
			DayOfWeek:      int(cal[3]),
			DayOfMonth:     int(cal[4]),
			WeekOfYear:     int(cal[5]),
			MonthOfYear:    int(cal[6]),
			Year:           int(cal[7]),
		}
		for i := range windows {
			r.Changepoints = append(r.Changepoints, domain.ChangepointFeature{
				LookbackWindow: int(windows[i]),
				Location:       locations[i],
				Score:          scores[i],
			})
		}
		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}
	return result, nil
}
