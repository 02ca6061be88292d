package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds all the lipgloss styles for the TUI.
type Styles struct {
	// Frames
	CanvasBorder lipgloss.Style
	LogBorder    lipgloss.Style

	// Status indicators
	StatusConnected    lipgloss.Style
	StatusDisconnected lipgloss.Style
	StatusConnecting   lipgloss.Style
	StatusMessage      lipgloss.Style
	Progress           lipgloss.Style

	// Brush level meter
	LevelOn  lipgloss.Style
	LevelOff lipgloss.Style

	// Input
	InputPrompt lipgloss.Style

	// Misc
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		CanvasBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
		LogBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),

		// Status indicators - subtle colors
		StatusConnected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("71")), // Muted green
		StatusDisconnected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")), // Gray
		StatusConnecting: lipgloss.NewStyle().
			Foreground(lipgloss.Color("179")), // Muted yellow
		StatusMessage: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Progress: lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")),

		LevelOn: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		LevelOff: lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")),

		InputPrompt: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")),
	}
}
