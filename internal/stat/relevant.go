package stat

import (
	"time"

	"github.com/srcsintheta/timetracker/internal/calendar"
)

// RelevantDays counts the calendar days of a year that could plausibly
// carry tracked data: the full year, minus the days before the first entry
// when the year is the first-entry year, minus the days from now to the
// year's end when the year is the current one.
func RelevantDays(firstEntry time.Time, year int, now time.Time) int {
	res := calendar.DaysInYear(year)

	if firstEntry.Year() == year {
		res -= firstEntry.YearDay() - 1
	}
	if year == now.Year() {
		res -= calendar.DaysInYear(year) - (now.YearDay() - 1)
	}
	return res
}

// RelevantWeeks counts the ISO weeks of a week-numbering year that could
// plausibly carry tracked data. Weeks after now's week are not relevant
// when the year is the current ISO week-year. Weeks up to and including
// the first entry's week are not relevant when the year is the first
// entry's ISO week-year, unless that first week began on a Monday and was
// therefore fully observable from its start.
func RelevantWeeks(firstEntry time.Time, year int, now time.Time) int {
	res := calendar.MaxISOWeek(year)

	nowYear, nowWeek := now.ISOWeek()
	if year == nowYear {
		res -= calendar.MaxISOWeek(year) - (nowWeek - 1)
	}

	firstYear, firstWeek := firstEntry.ISOWeek()
	if year == firstYear {
		res -= firstWeek
		if mondayIndex(firstEntry) == 0 {
			res++
		}
	}

	if res < 0 {
		return 0
	}
	return res
}

// RelevantDaysOfCurrentWeek counts the days of now's ISO week that lie
// strictly before today, clipped to the first entry when tracking began
// within this very week. Used as the divisor for the current-week daily
// average; can be zero on a Monday.
func RelevantDaysOfCurrentWeek(firstEntry, now time.Time) int {
	fy, fw := firstEntry.ISOWeek()
	ny, nw := now.ISOWeek()
	if fy == ny && fw == nw {
		return mondayIndex(now) - mondayIndex(firstEntry)
	}
	return mondayIndex(now)
}

// RelevantDaysOfCurrentMonth counts the days of now's month usable as the
// monthly average divisor. Unlike the other windows it includes today;
// when tracking began within this very month it is clipped to the span
// from the first entry to today.
func RelevantDaysOfCurrentMonth(firstEntry, now time.Time) int {
	daysInMonth := calendar.DaysInMonth(now.Year(), now.Month())

	res := daysInMonth
	if now.Month() == firstEntry.Month() && now.Year() == firstEntry.Year() {
		res -= firstEntry.Day() - 1
		res -= daysInMonth - (now.Day() - 1)
	}
	return res
}
