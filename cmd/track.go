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
	"github.com/srcsintheta/timetracker/internal/store"
	"github.com/srcsintheta/timetracker/internal/tui"
	"github.com/srcsintheta/timetracker/internal/ui"
)

var trackSimple bool
var trackActivityID int

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Run a live tracking session",
	Long: `Run a live work/break session for one activity.

In an interactive terminal this launches a full-screen timer; Enter
switches between work and break, q ends the session. Every work stretch
is recorded with its real start and end time, so a session running past
midnight lands on the right days.

Use --simple for an inline one-line timer: press Enter to switch between
work and break, type q and Enter to stop.`,
	RunE: runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)
	trackCmd.Flags().BoolVar(&trackSimple, "simple", false,
		"Inline timer output instead of the full-screen view")
	trackCmd.Flags().IntVar(&trackActivityID, "activity", 0,
		"Activity id to track (skips the picker)")
}

func runTrack(_ *cobra.Command, _ []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	act, err := resolveActivity(db, trackActivityID)
	if err != nil {
		return err
	}

	var segments []tui.Segment
	if tui.IsTTY() && !trackSimple {
		result, err := tui.RunTrack(act.Name)
		if err != nil {
			return err
		}
		segments = result.Segments
	} else {
		segments, err = runInlineSession(act.Name)
		if err != nil {
			return err
		}
	}

	return recordSession(db, act, segments)
}

// resolveActivity returns the activity for an explicit id, or offers a
// picker over the active activities.
func resolveActivity(db *store.DB, id int) (activity.Activity, error) {
	s := activity.NewStore(db.Conn())

	if id > 0 {
		return s.Get(id)
	}

	acts, err := s.List(true)
	if err != nil {
		return activity.Activity{}, err
	}
	if len(acts) == 0 {
		return activity.Activity{}, errors.New(
			"no activities configured; add one with `timetracker activity add`")
	}
	if len(acts) == 1 {
		return acts[0], nil
	}
	if !tui.IsTTY() {
		return activity.Activity{}, errors.New(
			"not a terminal; pass --activity <id>")
	}

	options := make([]tui.Option, len(acts))
	for i, a := range acts {
		options[i] = tui.Option{
			Label:  a.Name,
			Detail: fmt.Sprintf("%s h total", ui.Hours(a.HoursTotal)),
		}
	}
	idx, err := tui.Pick("Track which activity?", options)
	if err != nil {
		return activity.Activity{}, err
	}
	if idx < 0 {
		return activity.Activity{}, errors.New("no activity selected")
	}
	return acts[idx], nil
}

// runInlineSession is the plain fallback timer. One goroutine redraws the
// elapsed clock every second while the main goroutine blocks on stdin;
// once a line arrives the ticker goroutine is signalled to stop and joined
// before the segment is sealed.
func runInlineSession(name string) ([]tui.Segment, error) {
	fmt.Println()
	ui.Putsf("  %sTracking %s", ui.IconClock, ui.Accent.Render(name))
	ui.Inf("Enter switches work/break, q ends the session.")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	phase := tui.PhaseWork
	phaseStart := time.Now()
	var segments []tui.Segment

	for {
		label := phase.String()
		stop := make(chan struct{})
		done := make(chan struct{})

		go func() {
			defer close(done)
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					fmt.Printf("\r  %-5s %s ", label, ui.Clock(time.Since(phaseStart)))
				}
			}
		}()

		line, readErr := reader.ReadString('\n')

		close(stop)
		<-done
		fmt.Println()

		now := time.Now()
		if now.After(phaseStart) {
			segments = append(segments, tui.Segment{
				Phase: phase,
				Start: phaseStart,
				End:   now,
			})
		}

		if readErr != nil || strings.TrimSpace(line) == "q" {
			return segments, nil
		}

		if phase == tui.PhaseWork {
			phase = tui.PhaseBreak
		} else {
			phase = tui.PhaseWork
		}
		phaseStart = now
	}
}

// recordSession enters every work segment into the ledger and prints the
// session summary. Break segments only contribute to the pause total.
func recordSession(db *store.DB, act activity.Activity, segments []tui.Segment) error {
	var worked, paused time.Duration

	for _, seg := range segments {
		if seg.Phase != tui.PhaseWork {
			paused += seg.End.Sub(seg.Start)
			continue
		}
		worked += seg.End.Sub(seg.Start)

		err := ledger.Enter(db.Conn(), seg.Start, seg.End, act.ID)
		switch {
		case errors.Is(err, ledger.ErrTooLong):
			ui.Warn("segment of 24 hours or more was not recorded")
		case errors.Is(err, ledger.ErrInvalidInterval):
			// Sub-second segments round to nothing; skip quietly.
		case err != nil:
			return err
		}
	}

	fmt.Println()
	ui.Header("Session " + act.Name)
	ui.Kv("Worked", ui.Clock(worked))
	ui.Kv("Paused", ui.Clock(paused))
	if total := worked + paused; total > 0 {
		pct := float64(paused) / float64(total) * 100
		ui.Kv("Pause share", fmt.Sprintf("%.1f%%", pct))
	}
	fmt.Println()

	if worked > 0 {
		ui.Ok(fmt.Sprintf("Recorded %s on %q", ui.Clock(worked), act.Name))
	} else {
		ui.Inf("Nothing to record.")
	}
	return nil
}
