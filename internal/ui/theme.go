package ui

import "github.com/charmbracelet/lipgloss"

// timetracker's color palette: calm slate with a warm accent.
var (
	// Primary colors
	Saffron = lipgloss.Color("#F4A927")
	Slate   = lipgloss.Color("#708090")
	Emerald = lipgloss.Color("#50C878")
	Ruby    = lipgloss.Color("#E0115F")
	Azure   = lipgloss.Color("#3A86C8")
	Dim     = lipgloss.Color("#666666")
	Bright  = lipgloss.Color("#FFFFFF")

	// Semantic styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Saffron)

	Success = lipgloss.NewStyle().
		Foreground(Emerald)

	Error = lipgloss.NewStyle().
		Foreground(Ruby)

	Warning = lipgloss.NewStyle().
		Foreground(Saffron)

	Info = lipgloss.NewStyle().
		Foreground(Azure)

	Muted = lipgloss.NewStyle().
		Foreground(Dim)

	Accent = lipgloss.NewStyle().
		Foreground(Saffron).
		Bold(true)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Slate).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Bright)
)

// Icon constants.
const (
	IconClock = "⏱ "
	IconWarn  = "⚠ "
	IconError = "✗ "
	IconOk    = "✓ "
	IconArrow = "→"
	IconDot   = "·"
)
