package reporting

import (
	"time"

	"momentum-feature-lab/internal/metrics"
)

// Report represents the run summary of one feature pipeline execution.
type Report struct {
	// Metadata
	GeneratedAt     time.Time
	DataVersion     string // short content hash of the feature table
	LookbackWindows []int

	// Data Summary
	DataSummary DataSummary

	// Per-ticker coverage (sorted by ticker)
	Tickers []TickerRow

	// Per-ticker target and volatility distribution (sorted by ticker)
	TickerStats []metrics.TickerSummary

	// Change-point merges in application order
	Merges []MergeRow

	// Failures (assets and change-point files)
	Errors []string
}

// DataSummary contains data description.
type DataSummary struct {
	AssetsProcessed int
	AssetsFailed    int
	BadTicks        int
	Incomplete      int
	RowsAssembled   int
	RowsEmitted     int
	DateRangeStart  time.Time
	DateRangeEnd    time.Time
}

// TickerRow describes one ticker's rows in the final table.
type TickerRow struct {
	Ticker string
	Rows   int
	First  time.Time
	Last   time.Time
}

// MergeRow summarizes one lookback window's change-point merge.
type MergeRow struct {
	LookbackWindow int
	Files          int
	FailedFiles    int
	Matched        int
	Dropped        int
	DuplicateKeys  int
}
