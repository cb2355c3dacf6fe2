package tui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/srcsintheta/timetracker/internal/ui"
)

// Option is one selectable row in a Pick list.
type Option struct {
	Label  string
	Detail string // optional secondary text
}

// Pick shows an inline list selector and returns the index of the chosen
// option, or -1 when the user canceled. The lists here are short (a
// handful of activities or recent entries), so options are numbered for
// single-keystroke selection.
func Pick(title string, options []Option) (int, error) {
	p := &picker{title: title, options: options}
	m, err := tea.NewProgram(p).Run()
	if err != nil {
		return -1, fmt.Errorf("picker: %w", err)
	}
	result := m.(*picker)
	if result.canceled {
		return -1, nil
	}
	return result.cursor, nil
}

// IsTTY returns true when stdin is connected to a terminal.
func IsTTY() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

type picker struct {
	title    string
	options  []Option
	cursor   int
	done     bool
	canceled bool
}

func (p *picker) Init() tea.Cmd {
	return nil
}

func (p *picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch s := key.String(); s {
	case "ctrl+c", "esc", "q":
		p.canceled = true
		return p, tea.Quit

	case "enter":
		p.done = true
		return p, tea.Quit

	case "up", "k", "ctrl+p":
		if p.cursor > 0 {
			p.cursor--
		}

	case "down", "j", "ctrl+n":
		if p.cursor < len(p.options)-1 {
			p.cursor++
		}

	default:
		// Digits select directly, 1-based.
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if n := int(s[0] - '1'); n < len(p.options) {
				p.cursor = n
				p.done = true
				return p, tea.Quit
			}
		}
	}
	return p, nil
}

func (p *picker) View() string {
	if p.done || p.canceled {
		return ""
	}

	var b strings.Builder
	if p.title != "" {
		b.WriteString("  " + ui.Title.Render(p.title) + "\n\n")
	}

	for i, opt := range p.options {
		pointer := "  "
		label := opt.Label
		if i == p.cursor {
			pointer = ui.Accent.Render(ui.IconArrow + " ")
			label = ui.Accent.Render(label)
		}
		b.WriteString(fmt.Sprintf("  %s%2d. %s", pointer, i+1, label))
		if opt.Detail != "" {
			b.WriteString("  " + ui.Muted.Render(opt.Detail))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + ui.Muted.Render("  ↑↓ navigate · enter select · esc cancel") + "\n")
	return b.String()
}
