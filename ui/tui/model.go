package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/drake/digitpad/grid"
	"github.com/drake/digitpad/ui"
	"github.com/drake/digitpad/ui/tui/style"
	"github.com/drake/digitpad/ui/tui/util"
	"github.com/drake/digitpad/ui/tui/widget"
)

const scrollbackLines = 10000

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Widgets
	canvas *widget.Canvas
	log    *widget.LogView
	status *widget.Status
	input  *widget.Input
	help   *widget.Help
	keys   widget.KeyMap
	styles style.Styles

	// Push-based state from Session
	boundKeys map[string]bool

	// Stroke state. Cell motion reports every terminal column, so a stroke
	// paints a grid cell once until the pointer leaves it.
	drawing  bool
	lastCell [2]int

	// State
	width       int
	height      int
	outbound    chan<- ui.UIEvent
	dropped     int
	quitting    bool
	initialized bool
}

// NewModel creates a new TUI model.
func NewModel(outbound chan<- ui.UIEvent) Model {
	styles := style.DefaultStyles()
	keys := widget.DefaultKeyMap()

	return Model{
		canvas:   widget.NewCanvas(styles),
		log:      widget.NewLogView(widget.NewScrollbackBuffer(scrollbackLines), util.Fit),
		status:   widget.NewStatus(styles),
		input:    widget.NewInput(styles),
		help:     widget.NewHelp(keys, styles),
		keys:     keys,
		styles:   styles,
		outbound: outbound,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.initialized = true
		m.layout()
		return m, nil

	case ui.CellsMsg:
		m.canvas.Apply(msg)
		return m, nil

	case ui.CanvasMsg:
		m.canvas.Load(grid.Snapshot(msg))
		return m, nil

	case ui.LevelMsg:
		m.status.SetLevel(int(msg))
		return m, nil

	case ui.LogLineMsg:
		m.log.Append(string(msg))
		m.status.SetScrollMode(m.log.Mode(), m.log.NewLineCount())
		return m, nil

	case ui.LogErrorMsg:
		m.log.Append(m.styles.Error.Render(string(msg)))
		m.status.SetScrollMode(m.log.Mode(), m.log.NewLineCount())
		return m, nil

	case ui.StatusMsg:
		m.status.SetMessage(string(msg))
		return m, nil

	case ui.ConnectionStateMsg:
		m.status.SetConnectionState(msg.State, msg.Target)
		return m, nil

	case ui.ProgressMsg:
		m.status.SetProgress(msg.Sent, msg.Total)
		return m, nil

	case ui.UpdateBindsMsg:
		m.boundKeys = msg
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionRelease {
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.log.ScrollUp(3)
			m.status.SetScrollMode(m.log.Mode(), m.log.NewLineCount())
		case tea.MouseButtonWheelDown:
			m.log.ScrollDown(3)
			m.status.SetScrollMode(m.log.Mode(), m.log.NewLineCount())
		}
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		m.drawing = true
		m.lastCell = [2]int{-1, -1}
	case tea.MouseActionRelease:
		m.drawing = false
		return m, nil
	case tea.MouseActionMotion:
		if !m.drawing {
			return m, nil
		}
	}

	x, y, ok := m.canvas.Locate(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	if m.lastCell == [2]int{x, y} {
		return m, nil
	}
	m.lastCell = [2]int{x, y}
	if !m.sendOutbound(ui.PaintRequest{X: x, Y: y}) {
		// Let the next motion event retry this cell.
		m.lastCell = [2]int{-1, -1}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input.Active() {
		return m.handleCommandKey(msg)
	}

	keyStr := msg.String()
	if m.boundKeys[keyStr] {
		m.sendOutbound(ui.ExecuteBindMsg(keyStr))
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.sendOutbound(ui.QuitRequest{})
		return m, tea.Quit

	case key.Matches(msg, m.keys.Level):
		m.sendOutbound(ui.SetLevelRequest(int(msg.Runes[0] - '0')))

	case key.Matches(msg, m.keys.Clear):
		m.sendOutbound(ui.ClearRequest{})

	case key.Matches(msg, m.keys.Save):
		m.sendOutbound(ui.SaveRequest{})

	case key.Matches(msg, m.keys.Send):
		m.sendOutbound(ui.SendRequest{})

	case key.Matches(msg, m.keys.Copy):
		m.sendOutbound(ui.CopyRequest{})

	case key.Matches(msg, m.keys.Command):
		cmd := m.input.Activate()
		m.layout()
		return m, cmd

	case key.Matches(msg, m.keys.PageUp):
		m.log.PageUp()
		m.status.SetScrollMode(m.log.Mode(), m.log.NewLineCount())

	case key.Matches(msg, m.keys.PageDown):
		m.log.PageDown()
		m.status.SetScrollMode(m.log.Mode(), m.log.NewLineCount())
	}

	return m, nil
}

func (m Model) handleCommandKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.input.Deactivate()
		m.layout()
		return m, nil

	case tea.KeyEnter:
		if text := strings.TrimSpace(m.input.Submit()); text != "" {
			m.sendOutbound(ui.CommandMsg(text))
		}
		m.layout()
		return m, nil

	case tea.KeyUp:
		m.input.HistoryUp()
		return m, nil

	case tea.KeyDown:
		m.input.HistoryDown()
		return m, nil

	case tea.KeyBackspace:
		if m.input.Value() == "" {
			m.input.Deactivate()
			m.layout()
			return m, nil
		}
	}

	return m, m.input.Update(msg)
}

// sendOutbound hands msg to the session without blocking the UI goroutine.
// When the session has fallen behind the request is dropped, logged and
// reported in the status bar.
func (m *Model) sendOutbound(msg ui.UIEvent) bool {
	if m.outbound == nil {
		return false
	}
	select {
	case m.outbound <- msg:
		return true
	default:
		m.dropped++
		logrus.WithFields(logrus.Fields{
			"request": fmt.Sprintf("%T", msg),
			"dropped": m.dropped,
		}).Warn("Session busy, UI request dropped")
		m.status.SetMessage("session busy, input dropped")
		return false
	}
}

// layout sizes the widgets. The canvas sits at the top-left so mouse
// coordinates map onto it without an offset.
func (m *Model) layout() {
	logWidth := m.width - m.canvas.Width() - m.styles.LogBorder.GetHorizontalFrameSize()
	if logWidth < 0 {
		logWidth = 0
	}
	m.log.SetSize(logWidth, m.canvas.PreferredHeight()-m.styles.LogBorder.GetVerticalFrameSize())
	m.status.SetSize(m.width, 1)
	m.input.SetSize(m.width, 1)
	m.help.SetSize(m.width, 1)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.initialized {
		return "Loading..."
	}

	if m.quitting {
		return ""
	}

	top := m.canvas.View()
	if m.width-m.canvas.Width() > m.styles.LogBorder.GetHorizontalFrameSize() {
		top = lipgloss.JoinHorizontal(lipgloss.Top, top, m.styles.LogBorder.Render(m.log.View()))
	}

	bottom := m.help.View()
	if m.input.Active() {
		bottom = m.input.View()
	}

	return strings.Join([]string{top, m.status.View(), bottom}, "\n")
}
