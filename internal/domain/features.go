package domain

import (
	"fmt"
	"time"
)

// Fixed sizes of the feature banks.
const (
	NumHorizons   = 8
	NumTrendPairs = 11
)

// Calendar holds the calendar decomposition of a row's timestamp.
type Calendar struct {
	HourOfDay      int
	MinuteOfHour   int
	SecondOfMinute int
	DayOfWeek      int // Monday = 0
	DayOfMonth     int
	WeekOfYear     int // ISO week
	MonthOfYear    int
	Year           int
}

// ChangepointFeature is the change-point annotation for one lookback window.
type ChangepointFeature struct {
	LookbackWindow int     // window length used by the detector
	Location       float64 // cp_rl_<L>: normalized change-point location
	Score          float64 // cp_score_<L>: change-point severity
}

// FeatureRow is one (date, ticker) record of the feature table.
type FeatureRow struct {
	Ticker        string
	Date          time.Time
	Mid           float64 // raw mid price
	Srs           float64 // winsorized price
	SecondReturns float64 // one-step return of srs
	SecondVol     float64 // volatility estimate derived from SecondReturns
	TargetReturns float64 // next-step vol-scaled return

	NormReturns  [NumHorizons]float64   // ordered as HorizonNames
	TrendSignals [NumTrendPairs]float64 // ordered as TrendPairs

	Calendar

	// Changepoints is ordered by the sequence in which lookback windows were merged.
	Changepoints []ChangepointFeature
}

// Changepoint returns the annotation for a lookback window.
func (r *FeatureRow) Changepoint(lookbackWindow int) (ChangepointFeature, bool) {
	for _, cp := range r.Changepoints {
		if cp.LookbackWindow == lookbackWindow {
			return cp, true
		}
	}
	return ChangepointFeature{}, false
}

// TrendPair is a (short, long) window pair of the trend-signal bank, in seconds.
type TrendPair struct {
	Short int
	Long  int
}

// Column returns the feature column name for the pair.
func (p TrendPair) Column() string {
	return fmt.Sprintf("macd_%d_%d", p.Short, p.Long)
}

// TrendPairs is the fixed trend-signal bank in evaluation order.
var TrendPairs = [NumTrendPairs]TrendPair{
	{60, 300},         // 1m / 5m
	{300, 900},        // 5m / 15m
	{600, 1800},       // 10m / 30m
	{1800, 7200},      // 30m / 2h
	{3600, 14400},     // 1h / 4h
	{7200, 18000},     // 2h / 5h
	{14400, 23400},    // 4h / 1d
	{23400, 117000},   // 1d / 5d
	{187200, 561600},  // 8d / 24d
	{374400, 1123200}, // 16d / 48d
	{748800, 2246400}, // 32d / 96d
}

// HorizonNames are the normalized-return column names, shortest horizon first.
var HorizonNames = [NumHorizons]string{
	"norm_second_return",
	"norm_minute_return",
	"norm_hourly_return",
	"norm_daily_return",
	"norm_monthly_return",
	"norm_quarterly_return",
	"norm_biannual_return",
	"norm_annual_return",
}

// Horizons returns the normalized-return horizons in seconds for a trading
// day of secondsPerDay seconds.
func Horizons(secondsPerDay int) [NumHorizons]int {
	return [NumHorizons]int{
		1,
		60,
		3600,
		secondsPerDay,
		21 * secondsPerDay,
		63 * secondsPerDay,
		126 * secondsPerDay,
		252 * secondsPerDay,
	}
}

// CalendarColumns are the calendar column names (date excluded).
var CalendarColumns = []string{
	"hour_of_day",
	"minute_of_hour",
	"second_of_minute",
	"day_of_week",
	"day_of_month",
	"week_of_year",
	"month_of_year",
	"year",
}

// ChangepointColumns returns the column names for one lookback window.
func ChangepointColumns(lookbackWindow int) (location, score string) {
	return fmt.Sprintf("cp_rl_%d", lookbackWindow), fmt.Sprintf("cp_score_%d", lookbackWindow)
}

// FeatureColumns returns the ordered value columns of the table, excluding the
// date index and any change-point columns.
func FeatureColumns() []string {
	cols := []string{"ticker", "mid", "srs", "second_returns", "second_vol", "target_returns"}
	cols = append(cols, HorizonNames[:]...)
	for _, p := range TrendPairs {
		cols = append(cols, p.Column())
	}
	cols = append(cols, CalendarColumns...)
	return append(cols, "date")
}
