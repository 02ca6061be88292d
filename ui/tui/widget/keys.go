package widget

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/drake/digitpad/ui/tui/style"
)

// KeyMap lists the canvas-mode key bindings.
type KeyMap struct {
	Level    key.Binding
	Clear    key.Binding
	Save     key.Binding
	Send     key.Binding
	Copy     key.Binding
	Command  key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the built-in bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Level: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "level"),
		),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Send:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Command:  key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Level, k.Clear, k.Save, k.Send, k.Copy, k.Command, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.PageUp, k.PageDown}}
}

var _ Widget = (*Help)(nil)

// Help renders the one-line key hint.
type Help struct {
	model help.Model
	keys  KeyMap
}

// NewHelp creates a help line for keys.
func NewHelp(keys KeyMap, styles style.Styles) *Help {
	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	h.Styles.ShortDesc = styles.Muted
	h.Styles.ShortSeparator = styles.Muted
	return &Help{model: h, keys: keys}
}

// View implements Widget.
func (h *Help) View() string {
	return h.model.View(h.keys)
}

// SetSize implements Widget.
func (h *Help) SetSize(width, height int) {
	h.model.Width = width
}

// PreferredHeight implements Widget.
func (h *Help) PreferredHeight() int {
	return 1
}
