package ingestion

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"momentum-feature-lab/internal/domain"
)

// ErrMissingColumn is returned when a price file lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

var timestampColumns = []string{"date", "timestamp", "time", "datetime", "ts"}

// ParsePrices reads price ticks from CSV.
// Column rules:
//   - mid is required; empty or NA cells become ticks with a nil Mid
//   - the timestamp is the first of date/timestamp/time/datetime/ts, else the
//     first column that is neither ticker nor mid
//   - ticker is optional and defaults to defaultTicker
//
// Any other column, including outer index levels written before the
// timestamp, is ignored.
func ParsePrices(r io.Reader, defaultTicker string) ([]*domain.PriceTick, error) {
	table, err := ReadTable(r)
	if err != nil {
		return nil, err
	}

	midCol := table.Column("mid")
	if midCol < 0 {
		return nil, fmt.Errorf("%w: mid", ErrMissingColumn)
	}
	tickerCol := table.Column("ticker")
	tsCol := table.Column(timestampColumns...)
	if tsCol < 0 {
		for i := range table.Header {
			if i != midCol && i != tickerCol {
				tsCol = i
				break
			}
		}
	}
	if tsCol < 0 {
		return nil, fmt.Errorf("%w: timestamp", ErrMissingColumn)
	}

	ticks := make([]*domain.PriceTick, 0, len(table.Rows))
	for i, rec := range table.Rows {
		line := i + 2

		ts, err := ParseTimestamp(rec[tsCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		mid, err := ParseValue(rec[midCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		tick := &domain.PriceTick{Ticker: defaultTicker, Timestamp: ts}
		if tickerCol >= 0 && rec[tickerCol] != "" {
			tick.Ticker = rec[tickerCol]
		}
		if !math.IsNaN(mid) {
			tick.Mid = &mid
		}
		ticks = append(ticks, tick)
	}
	return ticks, nil
}

// LoadPriceCSV reads one price file. The ticker defaults to the file name.
func LoadPriceCSV(path string) ([]*domain.PriceTick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ticks, err := ParsePrices(f, TickerFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ticks, nil
}

// LoadResult is the outcome of loading a directory of price files.
type LoadResult struct {
	Ticks  []*domain.PriceTick
	Files  int
	Failed []*FileError
}

// LoadPriceDir loads every CSV file in dir. A file that fails to load is
// recorded in Failed and the remaining files are still read.
func LoadPriceDir(dir string) (*LoadResult, error) {
	paths, err := CSVFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("list price files: %w", err)
	}

	result := &LoadResult{}
	for _, p := range paths {
		ticks, err := LoadPriceCSV(p)
		if err != nil {
			result.Failed = append(result.Failed, &FileError{Path: p, Err: err})
			continue
		}
		result.Files++
		result.Ticks = append(result.Ticks, ticks...)
	}
	return result, nil
}
