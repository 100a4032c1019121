// Package calendar projects phases onto a month-by-month date axis.
package calendar

import "time"

// Day is one column of a month grid.
type Day struct {
	Number  int
	Weekday time.Weekday
	Label   string // two-letter weekday label
	Date    time.Time
}

// MonthGrid lays out the days of one month. Columns are Monday-first:
// FirstOffset is the column index of day 1 in a week row.
type MonthGrid struct {
	Year        int
	Month       time.Month
	Days        []Day
	DayCount    int
	FirstOffset int
}

// Normalize folds an out-of-range month into the neighbouring years:
// month 13 of 2024 is January 2025, month 0 of 2024 is December 2023.
func Normalize(year, month int) (int, time.Month) {
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

// DaysIn returns the number of days in the month, accounting for leap years.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NewMonthGrid builds the grid for year/month after normalization.
func NewMonthGrid(year, month int) MonthGrid {
	y, m := Normalize(year, month)
	count := DaysIn(y, m)
	g := MonthGrid{
		Year:     y,
		Month:    m,
		DayCount: count,
		Days:     make([]Day, count),
	}
	for i := range g.Days {
		d := time.Date(y, m, i+1, 0, 0, 0, 0, time.UTC)
		g.Days[i] = Day{
			Number:  i + 1,
			Weekday: d.Weekday(),
			Label:   d.Weekday().String()[:2],
			Date:    d,
		}
	}
	g.FirstOffset = mondayColumn(g.Days[0].Weekday)
	return g
}

// GridFor returns the grid of the month containing t.
func GridFor(t time.Time) MonthGrid {
	return NewMonthGrid(t.Year(), int(t.Month()))
}

// Next returns the following month's grid.
func (g MonthGrid) Next() MonthGrid {
	return NewMonthGrid(g.Year, int(g.Month)+1)
}

// Prev returns the preceding month's grid.
func (g MonthGrid) Prev() MonthGrid {
	return NewMonthGrid(g.Year, int(g.Month)-1)
}

// First returns the first day of the month.
func (g MonthGrid) First() time.Time {
	return time.Date(g.Year, g.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Last returns the last day of the month.
func (g MonthGrid) Last() time.Time {
	return time.Date(g.Year, g.Month, g.DayCount, 0, 0, 0, 0, time.UTC)
}

// Weeks splits the month into Monday-first rows; cells outside the month are
// zero Days.
func (g MonthGrid) Weeks() [][]Day {
	var weeks [][]Day
	week := make([]Day, 7)
	col := g.FirstOffset
	for _, d := range g.Days {
		week[col] = d
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = make([]Day, 7)
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}

func mondayColumn(w time.Weekday) int {
	return (int(w) + 6) % 7
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}
