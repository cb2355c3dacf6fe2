package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/srcsintheta/timetracker/internal/config"
	"github.com/srcsintheta/timetracker/internal/ledger"
	"github.com/srcsintheta/timetracker/internal/stat"
	"github.com/srcsintheta/timetracker/internal/ui"
)

var statsDetail bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show rolling statistics",
	Long: `Show rolling statistics over all activities: today, the current
week and month, and the trailing day/week windows from the config.

Use --detail for a per-activity breakdown.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsDetail, "detail", false, "Per-activity breakdown")
}

func runStats(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := stat.Summarize(db.Conn(), time.Now(),
		cfg.Stats.LastDays, cfg.Stats.LastWeeks)
	if errors.Is(err, ledger.ErrNoEntries) {
		ui.Inf("No entries yet.")
		ui.Tip("`timetracker track` to start a session.")
		return nil
	}
	if err != nil {
		return err
	}
	if len(summary.Activities) == 0 {
		ui.Inf("No activities configured.")
		return nil
	}

	ui.Header("Overview")
	ui.Kv("Today", fmt.Sprintf("%6s h  (last %d day avg: %s)",
		ui.Hours(summary.Today), summary.DaysN,
		avgHours(summary.LastDays, summary.LastDaysDivisor)))

	ui.Kv("This week", fmt.Sprintf("%6s h  (avg/day: %s)",
		ui.Hours(summary.Week),
		avgHours(summary.Week, float64(summary.WeekDayDivisor))))

	ui.Kv("Last week", fmt.Sprintf("%6s h  (avg/day: %s)",
		ui.Hours(summary.LastWeek.Hours),
		avgHours(summary.LastWeek.Hours, float64(summary.LastWeek.Weeks)*7)))

	ui.Kv(fmt.Sprintf("Last %d weeks", summary.LastWeeks.Weeks),
		fmt.Sprintf("%6s h/week (avg/day: %s)",
			avgHours(summary.LastWeeks.Hours, float64(summary.LastWeeks.Weeks)),
			avgHours(summary.LastWeeks.Hours, float64(summary.LastWeeks.Weeks)*7)))

	ui.Kv("This month", fmt.Sprintf("%6s h  (avg/day: %s)",
		ui.Hours(summary.Month),
		avgHours(summary.Month, float64(summary.MonthDayDivisor))))

	if statsDetail {
		for _, act := range summary.Activities {
			ui.Header(act.Name)
			ui.Kv("Today", fmt.Sprintf("%6s h  (last %d day avg: %s)",
				ui.Hours(act.Today), summary.DaysN,
				avgHours(act.LastDays, float64(summary.DaysN))))
			ui.Kv("All time", ui.Hours(act.AllTime)+" h")
			ui.Kv("This week", fmt.Sprintf("%6s h  (avg/day: %s)",
				ui.Hours(act.Week),
				avgHours(act.Week, float64(summary.WeekDayDivisor))))
			ui.Kv("Last week", ui.Hours(act.LastWeek.Hours)+" h")
			ui.Kv(fmt.Sprintf("Last %d weeks", act.LastWeeks.Weeks),
				fmt.Sprintf("%6s h/week", avgHours(act.LastWeeks.Hours, float64(act.LastWeeks.Weeks))))
		}
	}

	fmt.Println()
	return nil
}

// avgHours formats sum/divisor, or a dash when the divisor is zero (a
// Monday, the first day of tracking).
func avgHours(sum, divisor float64) string {
	if divisor <= 0 {
		return "—"
	}
	return ui.Hours(sum / divisor)
}
