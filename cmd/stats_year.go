package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/srcsintheta/timetracker/internal/ledger"
	"github.com/srcsintheta/timetracker/internal/stat"
	"github.com/srcsintheta/timetracker/internal/ui"
)

var statsYearCmd = &cobra.Command{
	Use:   "year",
	Short: "Show yearly day and week distributions",
	Long: `Show for every tracked year how its days and ISO weeks distribute
over hour thresholds: the share of days with at least 4, 8, 10, 12 or 14
hours, and of weeks with at least 10 through 90 hours.

Today, the current week and a partial first week are left out; their
buckets would only ever shrink while they fill up.`,
	RunE: runStatsYear,
}

func init() {
	statsCmd.AddCommand(statsYearCmd)
}

func runStatsYear(_ *cobra.Command, _ []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	now := time.Now()
	years, err := stat.AllYears(db.Conn(), now)
	if errors.Is(err, ledger.ErrNoEntries) {
		ui.Inf("No entries yet.")
		return nil
	}
	if err != nil {
		return err
	}
	if len(years) == 0 {
		ui.Inf("No complete days to report on yet.")
		return nil
	}

	for i, counts := range years {
		year := now.Year() - i
		label := fmt.Sprint(year)
		switch i {
		case 0:
			label = fmt.Sprintf("This year (%d)", year)
		case 1:
			label = fmt.Sprintf("Last year (%d)", year)
		}
		printYearCounts(label, counts)
	}

	if len(years) > 1 {
		total := years[0]
		for _, counts := range years[1:] {
			total = total.Add(counts)
		}
		printYearCounts("All time", total)
	}

	fmt.Println()
	return nil
}

func printYearCounts(label string, c stat.YearCounts) {
	ui.Header(label)

	ui.Putsf("  Days   (%d relevant)", c.RelevantDays)
	ui.Kv("  none", ui.Percent(c.DaysAtZero, c.RelevantDays)+" %")
	for i, threshold := range stat.DayThresholds {
		ui.Kv(fmt.Sprintf("  ≥ %2.0f h", threshold),
			ui.Percent(c.DaysAtLeast[i], c.RelevantDays)+" %")
	}

	ui.Putsf("  Weeks  (%d relevant)", c.RelevantWeeks)
	ui.Kv("  none", ui.Percent(c.WeeksAtZero, c.RelevantWeeks)+" %")
	for i, threshold := range stat.WeekThresholds {
		ui.Kv(fmt.Sprintf("  ≥ %2.0f h", threshold),
			ui.Percent(c.WeeksAtLeast[i], c.RelevantWeeks)+" %")
	}
}
