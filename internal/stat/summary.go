package stat

import (
	"database/sql"
	"time"

	"github.com/srcsintheta/timetracker/internal/activity"
	"github.com/srcsintheta/timetracker/internal/ledger"
)

// ActivityTotals bundles the rolling windows of one activity.
type ActivityTotals struct {
	ID        int
	Name      string
	AllTime   float64
	Today     float64
	Week      float64 // current ISO week, days before today
	Month     float64 // current month, days before today
	LastDays  float64 // the N days before today
	LastWeek  WeekTotal
	LastWeeks WeekTotal
}

// Summary is the rolling statistics overview: the per-activity windows
// plus their sums and the divisors needed to turn them into daily
// averages. Divisors can legitimately be zero (a Monday, the first day of
// tracking); renderers must guard the division.
type Summary struct {
	Activities []ActivityTotals

	Today     float64
	Week      float64
	Month     float64
	LastDays  float64
	LastWeek  WeekTotal
	LastWeeks WeekTotal

	WeekDayDivisor  int     // days of the current week before today
	LastDaysDivisor float64 // clipped to the first entry when tracking is young
	MonthDayDivisor int

	DaysN  int // requested last-N-days window
	WeeksN int // requested last-N-weeks window
}

// Summarize computes the rolling overview for all active activities.
// daysN and weeksN are the configured last-N windows. Returns
// ledger.ErrNoEntries when the history is empty.
func Summarize(db *sql.DB, now time.Time, daysN, weeksN int) (*Summary, error) {
	firstEntry, err := ledger.FirstEntry(db)
	if err != nil {
		return nil, err
	}

	acts, err := activity.NewStore(db).List(true)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		DaysN:           daysN,
		WeeksN:          weeksN,
		WeekDayDivisor:  RelevantDaysOfCurrentWeek(firstEntry, now),
		MonthDayDivisor: RelevantDaysOfCurrentMonth(firstEntry, now),
		LastDaysDivisor: lastDaysDivisor(firstEntry, now, daysN),
	}

	for _, act := range acts {
		t := ActivityTotals{ID: act.ID, Name: act.Name, AllTime: act.HoursTotal}

		if t.Today, err = TotalToday(db, now, act.ID); err != nil {
			return nil, err
		}
		if t.Week, err = TotalThisWeek(db, now, act.ID); err != nil {
			return nil, err
		}
		if t.Month, err = TotalThisMonth(db, now, act.ID); err != nil {
			return nil, err
		}
		if t.LastDays, err = TotalLastXDays(db, daysN, now, act.ID); err != nil {
			return nil, err
		}
		if t.LastWeek, err = TotalLastXWeeks(db, 1, now, act.ID); err != nil {
			return nil, err
		}
		if t.LastWeeks, err = TotalLastXWeeks(db, weeksN, now, act.ID); err != nil {
			return nil, err
		}

		s.Activities = append(s.Activities, t)

		s.Today += t.Today
		s.Week += t.Week
		s.Month += t.Month
		s.LastDays += t.LastDays
		s.LastWeek.Hours += t.LastWeek.Hours
		s.LastWeeks.Hours += t.LastWeeks.Hours
		if t.LastWeek.Weeks > s.LastWeek.Weeks {
			s.LastWeek.Weeks = t.LastWeek.Weeks
		}
		if t.LastWeeks.Weeks > s.LastWeeks.Weeks {
			s.LastWeeks.Weeks = t.LastWeeks.Weeks
		}
	}

	return s, nil
}

// lastDaysDivisor is n, reduced by the days of the window that precede the
// first entry. The window itself is never clipped; pre-tracking days just
// must not dilute the average.
func lastDaysDivisor(firstEntry, now time.Time, n int) float64 {
	divisor := float64(n)
	windowStart := now.AddDate(0, 0, -(n + 1))
	if firstEntry.After(windowStart) {
		divisor -= float64(int(firstEntry.Sub(windowStart).Hours() / 24))
	}
	return divisor
}
