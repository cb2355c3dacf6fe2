package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// colored is false when the environment asks for plain output (NO_COLOR,
// dumb terminals, redirected streams). Styled helpers fall back to bare
// text then.
var colored = termenv.EnvColorProfile() != termenv.Ascii

// Puts prints a line to stdout.
func Puts(s string) {
	fmt.Println(s)
}

// Putsf prints a formatted line to stdout.
func Putsf(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// Warn prints a warning message.
func Warn(msg string) {
	fmt.Println(render(Warning, IconWarn+msg))
}

// Err prints an error message to stderr.
func Err(msg string) {
	fmt.Fprintln(os.Stderr, render(Error.Bold(true), IconError+msg))
}

// Ok prints a success message.
func Ok(msg string) {
	fmt.Println(render(Success, IconOk+msg))
}

// Inf prints an info message.
func Inf(msg string) {
	fmt.Println(render(Info, "  "+msg))
}

// Header prints a section header.
func Header(s string) {
	fmt.Println()
	fmt.Println(render(Title, s))
	fmt.Println(render(Muted, strings.Repeat("─", len([]rune(s))+2)))
}

// Tip prints a helpful tip.
func Tip(msg string) {
	fmt.Println()
	fmt.Println(render(Muted, "  tip: "+msg))
}

// Kv prints a key-value pair, padded.
func Kv(key string, value string) {
	k := render(KeyStyle, fmt.Sprintf("  %-14s", key))
	v := render(ValueStyle, value)
	fmt.Printf("%s %s\n", k, v)
}

// Die prints an error message and exits.
func Die(msg string) {
	Err(msg)
	os.Exit(1)
}

// Dief prints a formatted error message and exits.
func Dief(format string, args ...any) {
	Die(fmt.Sprintf(format, args...))
}

// Clock formats a duration as hh:mm:ss.
func Clock(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Hours formats an hour count with two decimals, e.g. "6.50".
func Hours(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// Percent formats a ratio of two counters as a percentage. A zero
// denominator renders as a dash instead of dividing.
func Percent(numerator, denominator int) string {
	if denominator == 0 {
		return "   —"
	}
	return fmt.Sprintf("%6.2f", float64(numerator)/float64(denominator)*100)
}

func render(style lipgloss.Style, s string) string {
	if !colored {
		return s
	}
	return style.Render(s)
}
