package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/srcsintheta/timetracker/internal/activity"
	"github.com/srcsintheta/timetracker/internal/ui"
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Manage the tracked activities",
	Long: `Manage the named activities time is tracked against.

Active activities have positive ids; deactivating one moves it to the
negative id range and renumbers the rest, its recorded history included.`,
	RunE: runActivityList,
}

var activityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active and deactivated activities",
	RunE:  runActivityList,
}

var activityAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new activity",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivityAdd,
}

var activityDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Deactivate an activity, keeping its history",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivityDeactivate,
}

var activityReactivateCmd = &cobra.Command{
	Use:   "reactivate <n>",
	Short: "Reactivate the n-th deactivated activity",
	Long: `Reactivate a deactivated activity. Pass the position shown by
"activity list": 1 for the most recently deactivated, 2 for the next.`,
	Args: cobra.ExactArgs(1),
	RunE: runActivityReactivate,
}

func init() {
	rootCmd.AddCommand(activityCmd)
	activityCmd.AddCommand(activityListCmd)
	activityCmd.AddCommand(activityAddCmd)
	activityCmd.AddCommand(activityDeactivateCmd)
	activityCmd.AddCommand(activityReactivateCmd)
}

func runActivityList(_ *cobra.Command, _ []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	s := activity.NewStore(db.Conn())

	active, err := s.List(true)
	if err != nil {
		return err
	}
	inactive, err := s.List(false)
	if err != nil {
		return err
	}

	ui.Header("Activities")
	if len(active) == 0 {
		ui.Inf("none")
	}
	for _, a := range active {
		ui.Kv(fmt.Sprintf("%d. %s", a.ID, a.Name),
			fmt.Sprintf("%s h total, since %s", ui.Hours(a.HoursTotal), a.Added))
	}

	if len(inactive) > 0 {
		ui.Header("Deactivated")
		for i, a := range inactive {
			ui.Kv(fmt.Sprintf("%d. %s", i+1, a.Name),
				fmt.Sprintf("%s h total, since %s", ui.Hours(a.HoursTotal), a.Added))
		}
	}
	fmt.Println()
	return nil
}

func runActivityAdd(_ *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	name := args[0]
	if err := activity.NewStore(db.Conn()).Add(name, time.Now()); err != nil {
		return err
	}
	ui.Ok(fmt.Sprintf("Added activity %q", name))
	return nil
}

func runActivityDeactivate(_ *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return fmt.Errorf("expected a positive activity id, got %q", args[0])
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	s := activity.NewStore(db.Conn())
	name, err := s.Name(id)
	if err != nil {
		return err
	}
	if err := s.Deactivate(id); err != nil {
		return err
	}
	ui.Ok(fmt.Sprintf("Deactivated %q; remaining activities renumbered", name))
	return nil
}

func runActivityReactivate(_ *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return fmt.Errorf("expected a position from the deactivated list, got %q", args[0])
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	s := activity.NewStore(db.Conn())
	name, err := s.Name(-n)
	if err != nil {
		return err
	}
	if err := s.Reactivate(-n); err != nil {
		return err
	}
	ui.Ok(fmt.Sprintf("Reactivated %q", name))
	return nil
}
