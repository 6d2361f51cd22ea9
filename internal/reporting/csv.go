package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"momentum-feature-lab/internal/domain"
)

// DateLayout formats the date index and the date column.
const DateLayout = "2006-01-02 15:04:05.999999999"

// FeatureHeader returns the feature CSV header: the date index followed by
// the feature columns and one (cp_rl_L, cp_score_L) pair per window.
func FeatureHeader(lookbackWindows []int) []string {
	header := append([]string{"date"}, domain.FeatureColumns()...)
	for _, l := range lookbackWindows {
		loc, score := domain.ChangepointColumns(l)
		header = append(header, loc, score)
	}
	return header
}

// WriteFeatureCSV writes the feature table as CSV.
// A row without a value for one of the windows leaves those cells empty.
func WriteFeatureCSV(w io.Writer, rows []*domain.FeatureRow, lookbackWindows []int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FeatureHeader(lookbackWindows)); err != nil {
		return err
	}

	record := make([]string, 0, len(domain.FeatureColumns())+1+2*len(lookbackWindows))
	for _, r := range rows {
		record = appendFeatureRecord(record[:0], r, lookbackWindows)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s %s: %w", r.Ticker, formatDate(r.Date), err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// RenderFeatureCSV renders the feature table as CSV string.
func RenderFeatureCSV(rows []*domain.FeatureRow, lookbackWindows []int) string {
	var sb strings.Builder
	// strings.Builder never fails to write
	_ = WriteFeatureCSV(&sb, rows, lookbackWindows)
	return sb.String()
}

func appendFeatureRecord(rec []string, r *domain.FeatureRow, lookbackWindows []int) []string {
	date := formatDate(r.Date)
	rec = append(rec, date, r.Ticker)
	for _, v := range []float64{r.Mid, r.Srs, r.SecondReturns, r.SecondVol, r.TargetReturns} {
		rec = append(rec, formatFloat(v))
	}
	for _, v := range r.NormReturns {
		rec = append(rec, formatFloat(v))
	}
	for _, v := range r.TrendSignals {
		rec = append(rec, formatFloat(v))
	}
	c := r.Calendar
	for _, v := range []int{c.HourOfDay, c.MinuteOfHour, c.SecondOfMinute, c.DayOfWeek, c.DayOfMonth, c.WeekOfYear, c.MonthOfYear, c.Year} {
		rec = append(rec, strconv.Itoa(v))
	}
	rec = append(rec, date)

	for _, l := range lookbackWindows {
		cp, ok := r.Changepoint(l)
		if !ok {
			rec = append(rec, "", "")
			continue
		}
		rec = append(rec, formatFloat(cp.Location), formatFloat(cp.Score))
	}
	return rec
}

func formatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
