package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Feature Pipeline Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Data version: `%s` | Lookback windows: %s\n\n", r.DataVersion, formatWindows(r.LookbackWindows)))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Assets Processed | %d |\n", r.DataSummary.AssetsProcessed))
	sb.WriteString(fmt.Sprintf("| Assets Failed | %d |\n", r.DataSummary.AssetsFailed))
	sb.WriteString(fmt.Sprintf("| Bad Ticks Dropped | %d |\n", r.DataSummary.BadTicks))
	sb.WriteString(fmt.Sprintf("| Incomplete Rows Dropped | %d |\n", r.DataSummary.Incomplete))
	sb.WriteString(fmt.Sprintf("| Rows Assembled | %d |\n", r.DataSummary.RowsAssembled))
	sb.WriteString(fmt.Sprintf("| Rows Emitted | %d |\n", r.DataSummary.RowsEmitted))
	sb.WriteString(fmt.Sprintf("| Date Range Start | %s |\n", formatRangeBound(r.DataSummary.DateRangeStart)))
	sb.WriteString(fmt.Sprintf("| Date Range End | %s |\n", formatRangeBound(r.DataSummary.DateRangeEnd)))
	sb.WriteString("\n")

	// Tickers
	sb.WriteString("## Tickers\n\n")
	if len(r.Tickers) > 0 {
		sb.WriteString("| Ticker | Rows | First | Last |\n")
		sb.WriteString("|--------|------|-------|------|\n")
		for _, t := range r.Tickers {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s |\n",
				t.Ticker, t.Rows, formatDate(t.First), formatDate(t.Last)))
		}
	} else {
		sb.WriteString("No feature rows emitted.\n")
	}
	sb.WriteString("\n")

	// Target distribution
	sb.WriteString("## Target Returns by Ticker\n\n")
	if len(r.TickerStats) > 0 {
		sb.WriteString("| Ticker | Mean | Stddev | P10 | Median | P90 | HitRate | MaxDD | Median Vol |\n")
		sb.WriteString("|--------|------|--------|-----|--------|-----|---------|-------|------------|\n")
		for _, s := range r.TickerStats {
			tr := s.TargetReturns
			sb.WriteString(fmt.Sprintf("| %s | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f | %.6f |\n",
				s.Ticker, tr.Mean, tr.Stddev, tr.P10, tr.Median, tr.P90, s.HitRate, s.MaxDrawdown, s.SecondVol.Median))
		}
	} else {
		sb.WriteString("No target statistics available.\n")
	}
	sb.WriteString("\n")

	// Change-point merges
	sb.WriteString("## Change-Point Merges\n\n")
	if len(r.Merges) > 0 {
		sb.WriteString("| LBW | Files | Failed Files | Matched | Dropped | Duplicate Keys |\n")
		sb.WriteString("|-----|-------|--------------|---------|---------|----------------|\n")
		for _, m := range r.Merges {
			sb.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %d | %d |\n",
				m.LookbackWindow, m.Files, m.FailedFiles, m.Matched, m.Dropped, m.DuplicateKeys))
		}
	} else {
		sb.WriteString("No change-point windows merged.\n")
	}
	sb.WriteString("\n")

	// Errors
	sb.WriteString("## Errors\n\n")
	if len(r.Errors) > 0 {
		for _, err := range r.Errors {
			sb.WriteString(fmt.Sprintf("- %s\n", err))
		}
	} else {
		sb.WriteString("None.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func formatWindows(windows []int) string {
	if len(windows) == 0 {
		return "none"
	}
	parts := make([]string, len(windows))
	for i, l := range windows {
		parts[i] = fmt.Sprint(l)
	}
	return strings.Join(parts, ", ")
}

func formatRangeBound(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return formatDate(t)
}
