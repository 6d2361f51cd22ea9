// Package changepoint loads change-point detector output and aligns it with
// the feature table.
package changepoint

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/ingestion"
)

// ErrInvalidLookback is returned for a non-positive lookback window length.
var ErrInvalidLookback = errors.New("lookback window must be positive")

// Read parses one asset's change-point CSV and repairs it.
// The first column is the timestamp index; t, cp_location and cp_score are
// required. Each value column is forward-filled, rows still missing a value
// (no earlier detection to fill from) are dropped, and cp_location_norm is
// recomputed from the filled values. A stored cp_location_norm is ignored.
func Read(r io.Reader, ticker string, lookbackWindow int) ([]domain.ChangepointRecord, error) {
	if lookbackWindow <= 0 {
		return nil, ErrInvalidLookback
	}

	table, err := ingestion.ReadTable(r)
	if err != nil {
		return nil, err
	}

	cols := [3]int{table.Column("t"), table.Column("cp_location"), table.Column("cp_score")}
	for i, name := range []string{"t", "cp_location", "cp_score"} {
		if cols[i] < 0 {
			return nil, fmt.Errorf("%w: %s", ingestion.ErrMissingColumn, name)
		}
	}

	dates := make([]time.Time, len(table.Rows))
	values := make([][3]float64, len(table.Rows))
	for i, rec := range table.Rows {
		line := i + 2
		if dates[i], err = ingestion.ParseTimestamp(rec[0]); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		for c, col := range cols {
			if values[i][c], err = ingestion.ParseValue(rec[col]); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
	}

	forwardFill(values)

	L := float64(lookbackWindow)
	records := make([]domain.ChangepointRecord, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v[0]) || math.IsNaN(v[1]) || math.IsNaN(v[2]) {
			continue
		}
		records = append(records, domain.ChangepointRecord{
			Ticker:         ticker,
			Date:           dates[i],
			T:              v[0],
			Location:       v[1],
			Score:          v[2],
			LocationNorm:   (v[0] - v[1]) / L,
			LookbackWindow: lookbackWindow,
		})
	}
	return records, nil
}

// ReadFile reads a change-point file; the ticker is the file name minus its
// extension.
func ReadFile(path string, lookbackWindow int) ([]domain.ChangepointRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f, ingestion.TickerFromPath(path), lookbackWindow)
}

// forwardFill replaces every NaN with the last valid value of its column.
func forwardFill(values [][3]float64) {
	last := [3]float64{math.NaN(), math.NaN(), math.NaN()}
	for i := range values {
		for c := range values[i] {
			if math.IsNaN(values[i][c]) {
				values[i][c] = last[c]
			} else {
				last[c] = values[i][c]
			}
		}
	}
}
