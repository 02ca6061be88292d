package widget

import (
	"fmt"
	"strings"

	"github.com/drake/digitpad/grid"
	"github.com/drake/digitpad/ui"
	"github.com/drake/digitpad/ui/tui/style"
	"github.com/drake/digitpad/ui/tui/util"
)

var _ Widget = (*Status)(nil)

const progressWidth = 20

// Status displays the connection, brush level, send progress and the last
// status message on one line.
type Status struct {
	connState ui.ConnectionState
	target    string
	level     int
	message   string
	sent      int
	total     int
	scroll    ScrollMode
	newLines  int
	width     int
	styles    style.Styles
}

// NewStatus creates a new status widget.
func NewStatus(styles style.Styles) *Status {
	return &Status{
		connState: ui.StateDisconnected,
		level:     grid.MaxLevel,
		styles:    styles,
	}
}

// View implements Widget.
func (s *Status) View() string {
	var left string
	switch s.connState {
	case ui.StateConnected:
		left = s.styles.StatusConnected.Render("● " + s.target)
	case ui.StateConnecting:
		left = s.styles.StatusConnecting.Render("● connecting " + s.target)
	default:
		left = s.styles.StatusDisconnected.Render("● disconnected")
	}

	parts := []string{left, s.levelMeter()}
	if s.sending() {
		parts = append(parts, s.progressBar())
	}
	if s.message != "" {
		parts = append(parts, s.styles.StatusMessage.Render(s.message))
	}
	line := strings.Join(parts, "  ")

	var right string
	if s.scroll == ModeScrolled {
		if s.newLines > 0 {
			right = s.styles.Warning.Render(fmt.Sprintf("SCROLLED (%d new)", s.newLines))
		} else {
			right = s.styles.Warning.Render("SCROLLED")
		}
	}

	padding := s.width - util.VisibleLen(line) - util.VisibleLen(right)
	if padding < 1 {
		padding = 1
	}
	return util.Fit(line+strings.Repeat(" ", padding)+right, s.width)
}

func (s *Status) levelMeter() string {
	on := strings.Repeat("▮", s.level)
	off := strings.Repeat("▯", grid.MaxLevel-s.level)
	return fmt.Sprintf("level %d ", s.level) + s.styles.LevelOn.Render(on) + s.styles.LevelOff.Render(off)
}

func (s *Status) progressBar() string {
	filled := s.sent * progressWidth / s.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressWidth-filled)
	return s.styles.Progress.Render(fmt.Sprintf("%s %d/%d", bar, s.sent, s.total))
}

func (s *Status) sending() bool {
	return s.total > 0 && s.sent < s.total
}

// SetSize implements Widget.
func (s *Status) SetSize(width, height int) {
	s.width = width
}

// PreferredHeight implements Widget.
func (s *Status) PreferredHeight() int {
	return 1
}

// SetConnectionState updates the connection indicator.
func (s *Status) SetConnectionState(state ui.ConnectionState, target string) {
	s.connState = state
	s.target = target
}

// SetLevel updates the brush level meter.
func (s *Status) SetLevel(level int) {
	if grid.ValidLevel(level) {
		s.level = level
	}
}

// Level returns the displayed brush level.
func (s *Status) Level() int {
	return s.level
}

// SetMessage sets the free-form status text.
func (s *Status) SetMessage(text string) {
	s.message = text
}

// Message returns the free-form status text.
func (s *Status) Message() string {
	return s.message
}

// SetProgress updates the send progress. Sent >= total hides the bar.
func (s *Status) SetProgress(sent, total int) {
	s.sent = sent
	s.total = total
}

// SetScrollMode updates the log scroll indicator.
func (s *Status) SetScrollMode(mode ScrollMode, newLines int) {
	s.scroll = mode
	s.newLines = newLines
}
