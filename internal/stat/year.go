package stat

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/srcsintheta/timetracker/internal/ledger"
	"github.com/srcsintheta/timetracker/internal/store"
)

// Bucket thresholds in hours. A day or week increments every counter
// whose threshold its total meets, so the buckets are cumulative rather
// than mutually exclusive.
var (
	DayThresholds  = [5]float64{4, 8, 10, 12, 14}
	WeekThresholds = [9]float64{10, 20, 30, 40, 50, 60, 70, 80, 90}
)

// YearCounts holds the bucket counters for one year: how many relevant
// days reached each daily threshold and how many relevant ISO weeks
// reached each weekly threshold. The zero-hour buckets count relevant
// days/weeks with no recorded entry at all.
type YearCounts struct {
	DaysAtZero    int
	DaysAtLeast   [len(DayThresholds)]int
	RelevantDays  int
	WeeksAtZero   int
	WeeksAtLeast  [len(WeekThresholds)]int
	RelevantWeeks int
}

// Add returns the pointwise sum of two YearCounts. Addition per counter
// makes the merge associative and commutative, so a sequence of years can
// be folded in any order into an all-time total.
func (c YearCounts) Add(o YearCounts) YearCounts {
	res := YearCounts{
		DaysAtZero:    c.DaysAtZero + o.DaysAtZero,
		RelevantDays:  c.RelevantDays + o.RelevantDays,
		WeeksAtZero:   c.WeeksAtZero + o.WeeksAtZero,
		RelevantWeeks: c.RelevantWeeks + o.RelevantWeeks,
	}
	for i := range c.DaysAtLeast {
		res.DaysAtLeast[i] = c.DaysAtLeast[i] + o.DaysAtLeast[i]
	}
	for i := range c.WeeksAtLeast {
		res.WeeksAtLeast[i] = c.WeeksAtLeast[i] + o.WeeksAtLeast[i]
	}
	return res
}

// histRow is the slice of a history row the yearly scans need.
type histRow struct {
	Hours   float64
	Date    string
	ISOWeek int
}

// PercentagesForYear aggregates the bucket counters for one year.
//
// Day buckets scan the rows of the calendar year; week buckets scan the
// rows of the ISO week-numbering year, which near January 1 can include
// dates from the neighboring calendar year. Today and the current week are
// always in progress and excluded, as is the first-ever tracked week when
// it did not start on a Monday.
func PercentagesForYear(db *sql.DB, year int, now time.Time) (YearCounts, error) {
	firstEntry, err := ledger.FirstEntry(db)
	if err != nil {
		return YearCounts{}, err
	}
	if year < firstEntry.Year() {
		return YearCounts{}, ErrBeforeFirstEntry
	}

	var counts YearCounts
	counts.RelevantDays = RelevantDays(firstEntry, year, now)
	counts.RelevantWeeks = RelevantWeeks(firstEntry, year, now)

	// Day buckets over the calendar year.

	dayRows, err := loadRows(db, "year", year)
	if err != nil {
		return YearCounts{}, err
	}

	today := now.Format("2006-01-02")
	daysWithEntries := 0

	for _, group := range groupConsecutive(dayRows, func(r histRow) string { return r.Date }) {
		if group[0].Date == today {
			break
		}
		daysWithEntries++

		var sum float64
		for _, r := range group {
			sum += r.Hours
		}
		for i, threshold := range DayThresholds {
			if sum >= threshold {
				counts.DaysAtLeast[i]++
			}
		}
	}

	// Days with no entry at all, not days below the lowest threshold.
	counts.DaysAtZero = counts.RelevantDays - daysWithEntries

	// Week buckets over the ISO week-numbering year.

	weekRows, err := loadRows(db, "isoweekyear", year)
	if err != nil {
		return YearCounts{}, err
	}

	firstYear, firstWeek := firstEntry.ISOWeek()
	firstIsMonday := mondayIndex(firstEntry) == 0
	nowYear, nowWeek := now.ISOWeek()
	weeksCounted := 0

	for _, group := range groupConsecutive(weekRows, func(r histRow) int { return r.ISOWeek }) {
		week := group[0].ISOWeek
		if year == firstYear && week == firstWeek && !firstIsMonday {
			continue
		}
		if year == nowYear && week == nowWeek {
			break
		}
		weeksCounted++

		var sum float64
		for _, r := range group {
			sum += r.Hours
		}
		for i, threshold := range WeekThresholds {
			if sum >= threshold {
				counts.WeeksAtLeast[i]++
			}
		}
	}

	counts.WeeksAtZero = counts.RelevantWeeks - weeksCounted

	return counts, nil
}

// AllYears aggregates every year from now's year back to the first entry,
// newest first.
func AllYears(db *sql.DB, now time.Time) ([]YearCounts, error) {
	var years []YearCounts
	for year := now.Year(); ; year-- {
		counts, err := PercentagesForYear(db, year, now)
		if errors.Is(err, ErrBeforeFirstEntry) {
			break
		}
		if err != nil {
			return nil, err
		}
		years = append(years, counts)
	}
	return years, nil
}

// loadRows loads the history rows whose given column (year or isoweekyear)
// matches, ordered by date so consecutive grouping works in a single scan.
func loadRows(db *sql.DB, column string, year int) ([]histRow, error) {
	rows, err := db.Query(
		`SELECT hoursonday, date, isoweek FROM `+store.TableHistory+
			` WHERE `+column+` = ? ORDER BY date ASC`,
		year,
	)
	if err != nil {
		return nil, fmt.Errorf("loading %s %d: %w", column, year, err)
	}
	defer rows.Close()

	var res []histRow
	for rows.Next() {
		var r histRow
		if err := rows.Scan(&r.Hours, &r.Date, &r.ISOWeek); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// groupConsecutive splits a sorted slice into runs of elements sharing the
// same key. Only adjacent elements are compared, so the input must already
// be ordered by the grouping key.
func groupConsecutive[T any, K comparable](items []T, key func(T) K) [][]T {
	var groups [][]T
	for start := 0; start < len(items); {
		end := start + 1
		for end < len(items) && key(items[end]) == key(items[start]) {
			end++
		}
		groups = append(groups, items[start:end])
		start = end
	}
	return groups
}
