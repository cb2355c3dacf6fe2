// Package calendar provides the pure date arithmetic the ledger and stat
// packages are built on: month/year lengths, ISO week bounds, and the
// rounding applied to accumulated hour values.
package calendar

import (
	"math"
	"time"
)

// DaysInMonth returns the number of days in the given month, leap-year aware.
// Computed as the day before the first of the following month, never a
// hand-rolled 30/31 table.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1).Day()
}

// DaysInYear returns 366 for leap years, 365 otherwise.
func DaysInYear(year int) int {
	if DaysInMonth(year, time.February) == 29 {
		return 366
	}
	return 365
}

// MaxISOWeek returns the highest ISO week number of a year (52 or 53).
// Per ISO 8601 a year has 53 weeks iff its last Thursday falls in week 53,
// so December 31 is stepped backward to the preceding (or same) Thursday.
func MaxISOWeek(year int) int {
	day := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	for day.Weekday() != time.Thursday {
		day = day.AddDate(0, 0, -1)
	}
	_, week := day.ISOWeek()
	return week
}

// StartOfWeek returns the Monday at 00:00:00 of the ISO week containing t.
func StartOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday → 7 in ISO week numbering
	}
	daysBack := weekday - 1 // Monday is day 1
	monday := t.AddDate(0, 0, -daysBack)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

// Round rounds an hour value to six decimal digits. Keeps floating-point
// drift from accumulating over many small ledger entries.
func Round(f float64) float64 {
	return math.Round(f*1_000_000) / 1_000_000
}
