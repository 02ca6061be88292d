package util

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// VisibleLen returns the visible display width of a string (excluding ANSI codes).
func VisibleLen(s string) int {
	return runewidth.StringWidth(ansi.Strip(s))
}

// Fit truncates s to width display columns, keeping ANSI styling intact,
// and pads it with spaces to exactly width.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, "…")
	if pad := width - VisibleLen(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
