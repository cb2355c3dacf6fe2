// Package tui holds the interactive terminal pieces: the full-screen
// tracking timer and a small list picker.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/srcsintheta/timetracker/internal/ui"
)

// Phase labels one stretch of a tracking session.
type Phase int

const (
	PhaseWork Phase = iota
	PhaseBreak
)

func (p Phase) String() string {
	if p == PhaseBreak {
		return "break"
	}
	return "work"
}

// Segment is one uninterrupted stretch of a session with its real start
// and end timestamps, so midnight turnover applies when it is entered
// into the ledger.
type Segment struct {
	Phase Phase
	Start time.Time
	End   time.Time
}

// TrackResult is returned when a tracking session ends.
type TrackResult struct {
	Segments []Segment
	Worked   time.Duration
	Paused   time.Duration
}

// TrackModel is a full-screen Bubbletea count-up timer for a tracking
// session. Enter toggles between work and break; q ends the session.
type TrackModel struct {
	activity string

	phase      Phase
	phaseStart time.Time
	segments   []Segment
	worked     time.Duration
	paused     time.Duration

	now      time.Time
	width    int
	height   int
	quitting bool
}

type trackTickMsg time.Time

// NewTrackModel creates a session timer for the named activity, starting
// in the work phase at the given time.
func NewTrackModel(activity string, start time.Time) *TrackModel {
	return &TrackModel{
		activity:   activity,
		phase:      PhaseWork,
		phaseStart: start,
		now:        start,
		width:      80,
		height:     24,
	}
}

// RunTrack launches the full-screen session timer and blocks until the
// user ends the session.
func RunTrack(activity string) (TrackResult, error) {
	m := NewTrackModel(activity, time.Now())
	prog := tea.NewProgram(m, tea.WithAltScreen())
	result, err := prog.Run()
	if err != nil {
		return TrackResult{}, fmt.Errorf("track tui: %w", err)
	}
	final := result.(*TrackModel)
	return TrackResult{
		Segments: final.segments,
		Worked:   final.worked,
		Paused:   final.paused,
	}, nil
}

func trackTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return trackTickMsg(t)
	})
}

func (m *TrackModel) Init() tea.Cmd {
	return trackTick()
}

func (m *TrackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case trackTickMsg:
		m.now = time.Time(msg)
		return m, trackTick()

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", " ":
			m.closeSegment()
			if m.phase == PhaseWork {
				m.phase = PhaseBreak
			} else {
				m.phase = PhaseWork
			}
			return m, nil

		case "ctrl+c", "q":
			m.closeSegment()
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// closeSegment seals the running phase at the current tick and adds it to
// the session totals. Zero-length segments are dropped.
func (m *TrackModel) closeSegment() {
	elapsed := m.now.Sub(m.phaseStart)
	if elapsed > 0 {
		m.segments = append(m.segments, Segment{
			Phase: m.phase,
			Start: m.phaseStart,
			End:   m.now,
		})
		if m.phase == PhaseWork {
			m.worked += elapsed
		} else {
			m.paused += elapsed
		}
	}
	m.phaseStart = m.now
}

func (m *TrackModel) View() string {
	var b strings.Builder

	contentLines := 10
	topPad := (m.height - contentLines) / 2
	if topPad < 0 {
		topPad = 0
	}
	for i := 0; i < topPad; i++ {
		b.WriteString("\n")
	}

	center := lipgloss.NewStyle().Width(m.width).Align(lipgloss.Center)

	title := center.Bold(true).Foreground(ui.Saffron).
		Render(fmt.Sprintf("%s Tracking: %s", ui.IconClock, m.activity))
	b.WriteString(title + "\n\n")

	phaseStyle := center.Bold(true).Foreground(ui.Emerald)
	if m.phase == PhaseBreak {
		phaseStyle = phaseStyle.Foreground(ui.Saffron)
	}
	b.WriteString(phaseStyle.Render(strings.ToUpper(m.phase.String())) + "\n\n")

	elapsed := m.now.Sub(m.phaseStart)
	timer := center.Bold(true).Foreground(ui.Bright).Render(ui.Clock(elapsed))
	b.WriteString(timer + "\n\n")

	worked, paused := m.worked, m.paused
	if m.phase == PhaseWork {
		worked += elapsed
	} else {
		paused += elapsed
	}
	totals := center.Foreground(ui.Dim).Render(fmt.Sprintf(
		"worked %s %s paused %s", ui.Clock(worked), ui.IconDot, ui.Clock(paused)))
	b.WriteString(totals + "\n\n")

	help := center.Foreground(ui.Dim).
		Render("enter to switch work/break · q to end the session")
	b.WriteString(help + "\n")

	return b.String()
}
