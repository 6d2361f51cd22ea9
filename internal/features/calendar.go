package features

import (
	"time"

	"momentum-feature-lab/internal/domain"
)

// CalendarFields is the column-wise calendar decomposition of an index.
// Every field has the same length as the index, including zero.
type CalendarFields struct {
	HourOfDay      []int
	MinuteOfHour   []int
	SecondOfMinute []int
	DayOfWeek      []int
	DayOfMonth     []int
	WeekOfYear     []int
	MonthOfYear    []int
	Year           []int
	Date           []time.Time
}

// Len returns the number of rows.
func (c CalendarFields) Len() int {
	return len(c.Date)
}

// Row returns the calendar values of row i.
func (c CalendarFields) Row(i int) domain.Calendar {
	return domain.Calendar{
		HourOfDay:      c.HourOfDay[i],
		MinuteOfHour:   c.MinuteOfHour[i],
		SecondOfMinute: c.SecondOfMinute[i],
		DayOfWeek:      c.DayOfWeek[i],
		DayOfMonth:     c.DayOfMonth[i],
		WeekOfYear:     c.WeekOfYear[i],
		MonthOfYear:    c.MonthOfYear[i],
		Year:           c.Year[i],
	}
}

// ExtractCalendar decomposes timestamps into calendar fields. Days of week
// count from Monday = 0 and weeks follow ISO 8601. An empty index yields
// zero-length fields.
func ExtractCalendar(index []time.Time) CalendarFields {
	n := len(index)
	c := CalendarFields{
		HourOfDay:      make([]int, n),
		MinuteOfHour:   make([]int, n),
		SecondOfMinute: make([]int, n),
		DayOfWeek:      make([]int, n),
		DayOfMonth:     make([]int, n),
		WeekOfYear:     make([]int, n),
		MonthOfYear:    make([]int, n),
		Year:           make([]int, n),
		Date:           make([]time.Time, n),
	}

	for i, ts := range index {
		_, week := ts.ISOWeek()
		c.HourOfDay[i] = ts.Hour()
		c.MinuteOfHour[i] = ts.Minute()
		c.SecondOfMinute[i] = ts.Second()
		c.DayOfWeek[i] = (int(ts.Weekday()) + 6) % 7
		c.DayOfMonth[i] = ts.Day()
		c.WeekOfYear[i] = week
		c.MonthOfYear[i] = int(ts.Month())
		c.Year[i] = ts.Year()
		c.Date[i] = ts
	}
	return c
}
