package widget

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/drake/digitpad/ui/tui/style"
)

var _ Widget = (*Input)(nil)

// Input is the ':' command line. It is hidden until activated.
type Input struct {
	textinput textinput.Model
	active    bool
	history   []string
	histPos   int
}

// NewInput creates a new input widget.
func NewInput(styles style.Styles) *Input {
	ti := textinput.New()
	ti.Prompt = ":"
	ti.PromptStyle = styles.InputPrompt
	ti.CharLimit = 256
	ti.Width = 80

	return &Input{textinput: ti}
}

// Activate shows and focuses the command line.
func (i *Input) Activate() tea.Cmd {
	i.active = true
	i.histPos = len(i.history)
	return i.textinput.Focus()
}

// Deactivate hides the command line and clears it.
func (i *Input) Deactivate() {
	i.active = false
	i.textinput.Blur()
	i.textinput.Reset()
}

// Active reports whether the command line has focus.
func (i *Input) Active() bool {
	return i.active
}

// Submit returns the entered text, records it in history and deactivates.
func (i *Input) Submit() string {
	text := i.textinput.Value()
	if text != "" && (len(i.history) == 0 || i.history[len(i.history)-1] != text) {
		i.history = append(i.history, text)
	}
	i.Deactivate()
	return text
}

// HistoryUp recalls the previous command.
func (i *Input) HistoryUp() {
	if i.histPos > 0 {
		i.histPos--
		i.textinput.SetValue(i.history[i.histPos])
		i.textinput.CursorEnd()
	}
}

// HistoryDown recalls the next command, or clears past the newest.
func (i *Input) HistoryDown() {
	if i.histPos < len(i.history)-1 {
		i.histPos++
		i.textinput.SetValue(i.history[i.histPos])
		i.textinput.CursorEnd()
		return
	}
	i.histPos = len(i.history)
	i.textinput.SetValue("")
}

// Update forwards a message to the text input.
func (i *Input) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	i.textinput, cmd = i.textinput.Update(msg)
	return cmd
}

// Value returns the current input text.
func (i *Input) Value() string {
	return i.textinput.Value()
}

// SetValue sets the input text.
func (i *Input) SetValue(s string) {
	i.textinput.SetValue(s)
}

// View implements Widget.
func (i *Input) View() string {
	if !i.active {
		return ""
	}
	return i.textinput.View()
}

// SetSize implements Widget.
func (i *Input) SetSize(width, height int) {
	i.textinput.Width = width - 2
}

// PreferredHeight implements Widget.
func (i *Input) PreferredHeight() int {
	if i.active {
		return 1
	}
	return 0
}
