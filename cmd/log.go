package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/srcsintheta/timetracker/internal/ledger"
	"github.com/srcsintheta/timetracker/internal/ui"
)

var (
	logFor       time.Duration
	logDate      dateValue
	logYesterday bool
	logActivity  int
)

// dateValue is a YYYY-MM-DD flag value. The flag library validates the
// format at parse time so the command body only sees good dates.
type dateValue struct {
	t time.Time
}

var _ pflag.Value = (*dateValue)(nil)

func (d *dateValue) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format("2006-01-02")
}

func (d *dateValue) Set(s string) error {
	parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	d.t = parsed
	return nil
}

func (d *dateValue) Type() string { return "date" }

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record time manually",
	Long: `Record a block of time without running a live session.

The time is booked starting at midnight of the chosen day, so a logged
block always stays on that calendar date.

  timetracker log --for 2h30m
  timetracker log --for 45m --yesterday
  timetracker log --for 1h --date 2026-08-12 --activity 2`,
	RunE: runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().DurationVar(&logFor, "for", 0, "How much time to record (e.g. 2h30m)")
	logCmd.Flags().Var(&logDate, "date", "Day to book the time on (YYYY-MM-DD, default today)")
	logCmd.Flags().BoolVar(&logYesterday, "yesterday", false, "Book the time on yesterday")
	logCmd.Flags().IntVar(&logActivity, "activity", 0, "Activity id (skips the picker)")
	logCmd.MarkFlagRequired("for")
	logCmd.MarkFlagsMutuallyExclusive("date", "yesterday")
}

func runLog(_ *cobra.Command, _ []string) error {
	if logFor <= 0 {
		return errors.New("--for must be a positive duration")
	}

	day := time.Now()
	switch {
	case logYesterday:
		day = day.AddDate(0, 0, -1)
	case !logDate.t.IsZero():
		day = logDate.t
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.Local)

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	act, err := resolveActivity(db, logActivity)
	if err != nil {
		return err
	}

	err = ledger.Enter(db.Conn(), start, start.Add(logFor), act.ID)
	if errors.Is(err, ledger.ErrTooLong) {
		ui.Warn("blocks of 24 hours or more cannot be recorded; nothing was written")
		return nil
	}
	if err != nil {
		return err
	}

	ui.Ok(fmt.Sprintf("Recorded %s on %q for %s",
		ui.Clock(logFor), act.Name, start.Format("2006-01-02")))
	return nil
}
