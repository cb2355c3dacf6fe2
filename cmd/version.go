package cmd

import (
	"github.com/spf13/cobra"
	"github.com/srcsintheta/timetracker/internal/ui"
	"github.com/srcsintheta/timetracker/internal/version"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		if versionShort {
			ui.Puts(version.Short())
			return
		}
		ui.Puts(version.Full())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Version number only")
}
