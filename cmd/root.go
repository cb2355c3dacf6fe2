package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/srcsintheta/timetracker/internal/activity"
	"github.com/srcsintheta/timetracker/internal/config"
	"github.com/srcsintheta/timetracker/internal/ledger"
	"github.com/srcsintheta/timetracker/internal/stat"
	"github.com/srcsintheta/timetracker/internal/store"
	"github.com/srcsintheta/timetracker/internal/ui"
	"github.com/srcsintheta/timetracker/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "timetracker",
	Short: "Track where your hours go",
	Long:  `timetracker — record hours per activity and see where your time went.`,
	RunE:  runOverview,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.Err(err.Error())

		// Integrity violations mean the bookkeeping has diverged; exit
		// distinctly so scripts can tell data corruption from bad input.
		var ierr *store.IntegrityError
		if errors.As(err, &ierr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// openStore opens the database and runs the schema integrity check.
// Every command goes through here so a foreign or damaged database stops
// the program before any write.
func openStore() (*store.DB, error) {
	db, err := store.Open()
	if err != nil {
		return nil, err
	}
	if err := db.Check(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// runOverview shows the at-a-glance status when run without a subcommand.
func runOverview(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	greeting := "Hello!"
	if cfg.User.Name != "" {
		greeting = fmt.Sprintf("Hello %s!", cfg.User.Name)
	}
	ui.Puts(ui.IconClock + greeting)
	fmt.Println()

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	acts, err := activity.NewStore(db.Conn()).List(true)
	if err != nil {
		return fmt.Errorf("listing activities: %w", err)
	}

	if len(acts) == 0 {
		ui.Inf("No activities configured yet.")
		ui.Tip("`timetracker activity add \"Reading\"` to create your first one.")
		return nil
	}

	now := time.Now()
	var today float64
	for _, act := range acts {
		hours, err := stat.TotalToday(db.Conn(), now, act.ID)
		if err != nil {
			return err
		}
		today += hours
	}

	ui.Kv("Today", ui.Hours(today)+" h")
	ui.Kv("Activities", fmt.Sprintf("%d", len(acts)))

	first, err := ledger.FirstEntry(db.Conn())
	switch {
	case errors.Is(err, ledger.ErrNoEntries):
		ui.Kv("Tracked since", "no entries yet")
	case err != nil:
		return err
	default:
		ui.Kv("Tracked since", first.Format("2006-01-02"))
	}

	ui.Kv("Version", version.Short())

	if today == 0 {
		ui.Tip("`timetracker track` to start a session.")
	} else {
		ui.Tip("`timetracker stats` for the full picture.")
	}
	fmt.Println()
	return nil
}
