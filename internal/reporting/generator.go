package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"momentum-feature-lab/internal/idhash"
	"momentum-feature-lab/internal/metrics"
	"momentum-feature-lab/internal/orchestrator"
)

// Generator produces reports from a pipeline run.
type Generator struct {
	lookbackWindows []int
	now             func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(lookbackWindows []int) *Generator {
	return &Generator{
		lookbackWindows: lookbackWindows,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the run summary of result.
func (g *Generator) Generate(result *orchestrator.RunResult) *Report {
	report := &Report{
		GeneratedAt:     g.now(),
		DataVersion:     idhash.ShortDataVersion(result.Features),
		LookbackWindows: g.lookbackWindows,
		DataSummary: DataSummary{
			AssetsProcessed: result.AssetsProcessed,
			AssetsFailed:    result.AssetsFailed,
			BadTicks:        result.BadTicks,
			Incomplete:      result.Incomplete,
			RowsAssembled:   result.RowsAssembled,
			RowsEmitted:     result.RowsEmitted,
		},
		TickerStats: metrics.SummarizeTickers(result.Features),
		Errors:      result.Errors,
	}

	// Features are ordered by (ticker, date)
	for _, r := range result.Features {
		n := len(report.Tickers)
		if n == 0 || report.Tickers[n-1].Ticker != r.Ticker {
			report.Tickers = append(report.Tickers, TickerRow{Ticker: r.Ticker, First: r.Date})
			n++
		}
		t := &report.Tickers[n-1]
		t.Rows++
		t.Last = r.Date

		if report.DataSummary.DateRangeStart.IsZero() || r.Date.Before(report.DataSummary.DateRangeStart) {
			report.DataSummary.DateRangeStart = r.Date
		}
		if r.Date.After(report.DataSummary.DateRangeEnd) {
			report.DataSummary.DateRangeEnd = r.Date
		}
	}

	for _, m := range result.Merges {
		report.Merges = append(report.Merges, MergeRow{
			LookbackWindow: m.LookbackWindow,
			Files:          m.Files,
			FailedFiles:    len(m.FailedFiles),
			Matched:        m.Matched,
			Dropped:        m.Dropped,
			DuplicateKeys:  m.DuplicateKeys,
		})
	}

	return report
}

// WriteFeatureFile writes the feature table of result to path as CSV.
func (g *Generator) WriteFeatureFile(path string, result *orchestrator.RunResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create feature file: %w", err)
	}
	if err := WriteFeatureCSV(f, result.Features, g.lookbackWindows); err != nil {
		f.Close()
		return fmt.Errorf("write feature file: %w", err)
	}
	return f.Close()
}

// WriteReportFile renders report as Markdown into path.
func (g *Generator) WriteReportFile(path string, report *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	return os.WriteFile(path, []byte(RenderMarkdown(report)), 0o644)
}
