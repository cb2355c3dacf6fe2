package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/srcsintheta/timetracker/internal/activity"
	"github.com/srcsintheta/timetracker/internal/ledger"
	"github.com/srcsintheta/timetracker/internal/tui"
	"github.com/srcsintheta/timetracker/internal/ui"
)

// removeWindowDays is how far back entries are offered for removal.
const removeWindowDays = 8

var (
	removeIndex int
	removeYes   bool
)

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a recorded day entry",
	Long: `Remove one day's entry for one activity from the recent history.

Lists the entries of the last ` + fmt.Sprint(removeWindowDays) + ` days, newest first. The removed hours
are deducted from the activity's running total.`,
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
	removeCmd.Flags().IntVar(&removeIndex, "index", 0, "Entry number from the list (skips the picker)")
	removeCmd.Flags().BoolVar(&removeYes, "yes", false, "Skip the confirmation prompt")
}

func runRemove(_ *cobra.Command, _ []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := ledger.Recent(db.Conn(), time.Now(), removeWindowDays)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ui.Inf(fmt.Sprintf("No entries in the last %d days.", removeWindowDays))
		return nil
	}

	acts := activity.NewStore(db.Conn())
	labels := make([]string, len(entries))
	for i, e := range entries {
		name, err := acts.Name(e.ActivityID)
		if err != nil {
			name = fmt.Sprintf("activity %d", e.ActivityID)
		}
		day, _ := time.ParseInLocation("2006-01-02", e.Date, time.Local)
		labels[i] = fmt.Sprintf("%s %s  %6s h  %s",
			day.Format("Mon"), e.Date, ui.Hours(e.Hours), name)
	}

	idx := removeIndex - 1
	if removeIndex == 0 {
		if !tui.IsTTY() {
			return errors.New("not a terminal; pass --index <n>")
		}
		options := make([]tui.Option, len(labels))
		for i, l := range labels {
			options[i] = tui.Option{Label: l}
		}
		idx, err = tui.Pick("Remove which entry?", options)
		if err != nil {
			return err
		}
		if idx < 0 {
			return nil
		}
	}
	if idx < 0 || idx >= len(entries) {
		return fmt.Errorf("entry %d is not in the list (1-%d)", removeIndex, len(entries))
	}

	entry := entries[idx]
	if !removeYes && !confirm(fmt.Sprintf("Remove %s?", labels[idx])) {
		ui.Inf("Kept.")
		return nil
	}

	date, err := time.ParseInLocation("2006-01-02", entry.Date, time.Local)
	if err != nil {
		return fmt.Errorf("parsing entry date %q: %w", entry.Date, err)
	}

	if err := ledger.Remove(db.Conn(), date, entry.ActivityID); err != nil {
		return err
	}
	ui.Ok(fmt.Sprintf("Removed %s h from %s", ui.Hours(entry.Hours), entry.Date))
	return nil
}

func confirm(prompt string) bool {
	fmt.Printf("  %s (y/n): ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
