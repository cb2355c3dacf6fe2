// Package ledger is the entry ingestion and removal engine. It turns a
// tracked time interval into per-activity, per-day hour rows, splitting at
// local midnight when the interval straddles a date change, and keeps each
// activity's running total equal to the sum of its day rows.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/srcsintheta/timetracker/internal/activity"
	"github.com/srcsintheta/timetracker/internal/calendar"
	"github.com/srcsintheta/timetracker/internal/store"
)

var (
	// ErrTooLong rejects intervals of 24 hours or more. The data model has
	// no clean representation for a multi-day single interval, so callers
	// treat this as a warning no-op rather than a failure.
	ErrTooLong = errors.New("intervals of 24 hours or more are not supported")

	// ErrInvalidInterval rejects intervals whose end does not follow start.
	ErrInvalidInterval = errors.New("interval end must be after its start")

	// ErrNoSuchEntry is returned by Remove when no day entry exists for the
	// given activity and date.
	ErrNoSuchEntry = errors.New("no such entry in the history")

	// ErrNoEntries is returned by FirstEntry on an empty history.
	ErrNoEntries = errors.New("no entries recorded yet")
)

// DayEntry is a row from the history table: the hours one activity
// accumulated on one calendar date, with the date's calendar decomposition
// denormalized for range queries.
type DayEntry struct {
	ActivityID  int
	Year        int
	Month       int
	Day         int
	ISOWeek     int
	ISOWeekYear int
	Hours       float64
	Date        string // YYYY-MM-DD
}

// Enter records the interval [start, end) against the given activity.
//
// The elapsed duration is the true offset-aware difference, so a clock
// change inside the interval yields the correct hours. When start and end
// fall on different calendar dates the interval is split at local midnight
// into a till-midnight part for the start day and a from-midnight part for
// the end day; both parts come from naive wall-clock arithmetic, and any
// excess over the true duration (an offset change) is taken out of the
// later part. The activity's running total grows by the full duration
// either way.
//
// An end whose date-only value precedes the start's (possible when the
// clock offset jumps east across midnight) skips the split and attributes
// the whole duration to the start day.
func Enter(db *sql.DB, start, end time.Time, actID int) error {
	duration := end.Sub(start).Hours()
	if duration <= 0 {
		return ErrInvalidInterval
	}
	if duration >= 24 {
		return ErrTooLong
	}

	var tillMidnight, fromMidnight float64
	dateChanged := dateOnly(start).Before(dateOnly(end))

	if dateChanged {
		// Naive wall-clock arithmetic: offsets are deliberately ignored
		// here, the excess correction below accounts for them.
		nextMidnight := dateOnly(start).AddDate(0, 0, 1)
		lastMidnight := dateOnly(end)

		tillMidnight = nextMidnight.Sub(naive(start)).Hours()
		fromMidnight = naive(end).Sub(lastMidnight).Hours()

		// An offset change inside the interval makes the two naive parts
		// overshoot the true duration; the discrepancy always comes out of
		// the later part.
		if excess := tillMidnight + fromMidnight - duration; excess > 0 {
			fromMidnight -= excess
		}
	}

	dateBeg := start.Format("2006-01-02")

	var hoursOnDay float64
	noValue := false
	err := db.QueryRow(
		`SELECT hoursonday FROM `+store.TableHistory+` WHERE date = ? AND id = ?`,
		dateBeg, actID,
	).Scan(&hoursOnDay)
	if errors.Is(err, sql.ErrNoRows) {
		noValue = true
	} else if err != nil {
		return fmt.Errorf("reading day entry: %w", err)
	}

	var totalHours float64
	err = db.QueryRow(
		`SELECT hourstotal FROM `+store.TableActivities+` WHERE id = ?`, actID,
	).Scan(&totalHours)
	if errors.Is(err, sql.ErrNoRows) {
		return activity.ErrNoSuchActivity
	} else if err != nil {
		return fmt.Errorf("reading running total: %w", err)
	}

	// The running total grows by the full duration regardless of the split.
	totalHours = calendar.Round(totalHours + calendar.Round(duration))
	if _, err := db.Exec(
		`UPDATE `+store.TableActivities+` SET hourstotal = ? WHERE id = ?`,
		totalHours, actID,
	); err != nil {
		return fmt.Errorf("updating running total: %w", err)
	}

	if dateChanged {
		hoursOnDay += tillMidnight
	} else {
		hoursOnDay += duration
	}
	hoursOnDay = calendar.Round(hoursOnDay)

	if noValue {
		if err := insertDay(db, start, actID, hoursOnDay); err != nil {
			return err
		}
	} else {
		if _, err := db.Exec(
			`UPDATE `+store.TableHistory+` SET hoursonday = ? WHERE id = ? AND date = ?`,
			hoursOnDay, actID, dateBeg,
		); err != nil {
			return fmt.Errorf("updating day entry: %w", err)
		}
	}

	if dateChanged {
		// The end day cannot have a row yet under sequential use; a
		// collision means the history already diverged.
		dateEnd := end.Format("2006-01-02")
		var existing float64
		err := db.QueryRow(
			`SELECT hoursonday FROM `+store.TableHistory+` WHERE date = ? AND id = ?`,
			dateEnd, actID,
		).Scan(&existing)
		if err == nil {
			return store.Integrityf(
				"day entry already exists for activity %d on %s", actID, dateEnd)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("reading day entry: %w", err)
		}
		if err := insertDay(db, end, actID, calendar.Round(fromMidnight)); err != nil {
			return err
		}
	}

	return nil
}

// insertDay inserts a fresh history row for the calendar date of t.
func insertDay(db *sql.DB, t time.Time, actID int, hours float64) error {
	isoYear, isoWeek := t.ISOWeek()
	_, err := db.Exec(
		`INSERT INTO `+store.TableHistory+
			` (id, year, month, day, isoweek, isoweekyear, hoursonday, date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		actID, t.Year(), int(t.Month()), t.Day(), isoWeek, isoYear, hours,
		t.Format("2006-01-02"),
	)
	if err != nil {
		return fmt.Errorf("inserting day entry: %w", err)
	}
	return nil
}

// Remove deletes the day entry for (actID, date) and deducts its hours from
// the activity's running total. The activity must be active (positive id).
// A running total that would go negative, or a delete/update touching
// anything but exactly one row, means the bookkeeping has diverged and is
// reported as an *store.IntegrityError.
func Remove(db *sql.DB, date time.Time, actID int) error {
	if actID <= 0 {
		return fmt.Errorf("removal requires an active activity id, got %d", actID)
	}

	dateStr := date.Format("2006-01-02")

	var hours float64
	err := db.QueryRow(
		`SELECT hoursonday FROM `+store.TableHistory+` WHERE id = ? AND date = ?`,
		actID, dateStr,
	).Scan(&hours)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoSuchEntry
	} else if err != nil {
		return fmt.Errorf("reading day entry: %w", err)
	}

	var totalHours float64
	err = db.QueryRow(
		`SELECT hourstotal FROM `+store.TableActivities+` WHERE id = ?`, actID,
	).Scan(&totalHours)
	if errors.Is(err, sql.ErrNoRows) {
		return activity.ErrNoSuchActivity
	} else if err != nil {
		return fmt.Errorf("reading running total: %w", err)
	}

	if totalHours-hours < 0 {
		return store.Integrityf(
			"removing %.6f hours would drive activity %d total (%.6f) negative",
			hours, actID, totalHours)
	}

	res, err := db.Exec(
		`DELETE FROM `+store.TableHistory+` WHERE id = ? AND date = ?`,
		actID, dateStr,
	)
	if err != nil {
		return fmt.Errorf("deleting day entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return store.Integrityf("delete affected %d rows, expected exactly 1", n)
	}

	res, err = db.Exec(
		`UPDATE `+store.TableActivities+` SET hourstotal = ? WHERE id = ?`,
		calendar.Round(totalHours-hours), actID,
	)
	if err != nil {
		return fmt.Errorf("updating running total: %w", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return store.Integrityf("total update affected %d rows, expected exactly 1", n)
	}

	return nil
}

// FirstEntry returns midnight (local) of the earliest recorded date.
func FirstEntry(db *sql.DB) (time.Time, error) {
	var dateStr sql.NullString
	err := db.QueryRow(
		`SELECT MIN(date) FROM ` + store.TableHistory,
	).Scan(&dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("reading first entry: %w", err)
	}
	if !dateStr.Valid {
		return time.Time{}, ErrNoEntries
	}

	t, err := time.ParseInLocation("2006-01-02", dateStr.String, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing first entry date %q: %w", dateStr.String, err)
	}
	return t, nil
}

// Recent returns every day entry from the last `days` days before now,
// newest first. Used to offer entries for removal.
func Recent(db *sql.DB, now time.Time, days int) ([]DayEntry, error) {
	cutoff := now.AddDate(0, 0, -days).Format("2006-01-02")

	rows, err := db.Query(
		`SELECT id, year, month, day, isoweek, isoweekyear, hoursonday, date
		 FROM `+store.TableHistory+` WHERE date > ? ORDER BY date DESC`,
		cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []DayEntry
	for rows.Next() {
		var e DayEntry
		if err := rows.Scan(
			&e.ActivityID, &e.Year, &e.Month, &e.Day,
			&e.ISOWeek, &e.ISOWeekYear, &e.Hours, &e.Date,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// dateOnly strips t to its wall-clock calendar date at midnight UTC, making
// date comparisons independent of offsets.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// naive rebuilds t's wall-clock reading in UTC, discarding its offset.
func naive(t time.Time) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), time.UTC)
}
