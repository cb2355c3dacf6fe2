// Package stat is the read-only statistics engine: rolling-window totals
// per activity and yearly bucket percentages over the recorded history.
// Every query takes an explicit reference time instead of reading the
// clock, so results are deterministic and testable.
package stat

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/srcsintheta/timetracker/internal/calendar"
	"github.com/srcsintheta/timetracker/internal/ledger"
	"github.com/srcsintheta/timetracker/internal/store"
)

// ErrBeforeFirstEntry is returned for years preceding the first recorded
// entry.
var ErrBeforeFirstEntry = errors.New("year precedes the first recorded entry")

// WeekTotal is the result of a last-N-weeks query: the summed hours and
// the number of weeks actually counted. The count can fall short of the
// requested N when the scan runs into the partial first-ever week, and
// callers need it as the averaging divisor.
type WeekTotal struct {
	Hours float64
	Weeks int
}

// TotalToday sums the hours recorded for the activity on now's date.
func TotalToday(db *sql.DB, now time.Time, actID int) (float64, error) {
	return sumRange(db, actID, now.Format("2006-01-02"), nextDate(now))
}

// TotalThisWeek sums the hours from the Monday of now's ISO week up to but
// excluding now's date. Zero on a Monday.
func TotalThisWeek(db *sql.DB, now time.Time, actID int) (float64, error) {
	monday := calendar.StartOfWeek(now)
	return sumRange(db, actID, monday.Format("2006-01-02"), now.Format("2006-01-02"))
}

// TotalThisMonth sums the hours from the first of now's month up to but
// excluding now's date. Zero on the first of a month.
func TotalThisMonth(db *sql.DB, now time.Time, actID int) (float64, error) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return sumRange(db, actID, first.Format("2006-01-02"), now.Format("2006-01-02"))
}

// TotalLastXDays sums the hours over the x calendar dates immediately
// preceding now's date, today excluded. Days before tracking began simply
// contribute zero; the window is not clipped to the first entry.
func TotalLastXDays(db *sql.DB, x int, now time.Time, actID int) (float64, error) {
	from := now.AddDate(0, 0, -x)
	return sumRange(db, actID, from.Format("2006-01-02"), now.Format("2006-01-02"))
}

// TotalLastXWeeks sums the hours over up to x ISO weeks immediately
// preceding now's week, matched on (isoweek, isoweekyear) so weeks split
// across a year boundary count as one unit. The scan stops early when a
// candidate week is the first-ever recorded week and that week did not
// start on a Monday; such a structurally partial week is excluded rather
// than under-counted.
func TotalLastXWeeks(db *sql.DB, x int, now time.Time, actID int) (WeekTotal, error) {
	first, err := ledger.FirstEntry(db)
	if err != nil {
		return WeekTotal{}, err
	}
	firstYear, firstWeek := first.ISOWeek()
	firstIsMonday := mondayIndex(first) == 0

	var res WeekTotal
	for i := 1; i <= x; i++ {
		candidate := now.AddDate(0, 0, -7*i)
		year, week := candidate.ISOWeek()

		if year == firstYear && week == firstWeek && !firstIsMonday {
			break
		}

		var hours float64
		err := db.QueryRow(
			`SELECT COALESCE(SUM(hoursonday), 0) FROM `+store.TableHistory+
				` WHERE isoweek = ? AND isoweekyear = ? AND id = ?`,
			week, year, actID,
		).Scan(&hours)
		if err != nil {
			return WeekTotal{}, fmt.Errorf("summing week %d-W%02d: %w", year, week, err)
		}

		res.Hours += hours
		res.Weeks = i
	}
	res.Hours = calendar.Round(res.Hours)
	return res, nil
}

// sumRange sums hoursonday for one activity over the half-open date range
// [from, to). Dates are YYYY-MM-DD strings, which order lexicographically.
func sumRange(db *sql.DB, actID int, from, to string) (float64, error) {
	var hours float64
	err := db.QueryRow(
		`SELECT COALESCE(SUM(hoursonday), 0) FROM `+store.TableHistory+
			` WHERE id = ? AND date >= ? AND date < ?`,
		actID, from, to,
	).Scan(&hours)
	if err != nil {
		return 0, fmt.Errorf("summing %s..%s: %w", from, to, err)
	}
	return calendar.Round(hours), nil
}

func nextDate(t time.Time) string {
	return t.AddDate(0, 0, 1).Format("2006-01-02")
}

// mondayIndex maps a weekday to its offset from Monday: Monday is 0,
// Sunday is 6.
func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
