package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drake/digitpad/grid"
	"github.com/drake/digitpad/ui"
)

var _ ui.UI = (*BubbleTeaUI)(nil)

// BubbleTeaUI implements ui.UI using Bubble Tea.
type BubbleTeaUI struct {
	program *tea.Program

	// Buffered channel drained by a single goroutine. This decouples
	// callers from tea.Program.Send(), which blocks until the program runs.
	msgQueue chan tea.Msg

	// Requests from UI to Session. Session reads this in its event loop.
	outbound chan ui.UIEvent

	// Shutdown coordination
	done     chan struct{}
	doneOnce sync.Once
}

// NewBubbleTeaUI creates a new Bubble Tea-based UI.
func NewBubbleTeaUI() *BubbleTeaUI {
	b := &BubbleTeaUI{
		msgQueue: make(chan tea.Msg, 4096),
		outbound: make(chan ui.UIEvent, 256),
		done:     make(chan struct{}),
	}
	b.program = tea.NewProgram(
		NewModel(b.outbound),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	return b
}

// send queues a message for delivery to the Bubble Tea program.
// Blocks until queued; brush updates must not be lost or the canvas
// would drift from the grid.
func (b *BubbleTeaUI) send(msg tea.Msg) {
	select {
	case <-b.done:
	case b.msgQueue <- msg:
	}
}

// Run starts the TUI and blocks until exit.
func (b *BubbleTeaUI) Run() error {
	go func() {
		for {
			select {
			case <-b.done:
				return
			case msg := <-b.msgQueue:
				b.program.Send(msg)
			}
		}
	}()

	_, err := b.program.Run()
	b.doneOnce.Do(func() { close(b.done) })
	return err
}

// Done returns a channel that closes when the UI exits.
func (b *BubbleTeaUI) Done() <-chan struct{} {
	return b.done
}

// Quit signals the TUI to exit.
func (b *BubbleTeaUI) Quit() {
	b.program.Quit()
	b.doneOnce.Do(func() { close(b.done) })
}

// Outbound returns the channel of requests from UI to Session.
func (b *BubbleTeaUI) Outbound() <-chan ui.UIEvent {
	return b.outbound
}

// UpdateCells redraws the given cells.
func (b *BubbleTeaUI) UpdateCells(cells []grid.Cell) {
	b.send(ui.CellsMsg(cells))
}

// LoadCanvas replaces the whole canvas.
func (b *BubbleTeaUI) LoadCanvas(s grid.Snapshot) {
	b.send(ui.CanvasMsg(s))
}

// SetLevel updates the brush level indicator.
func (b *BubbleTeaUI) SetLevel(level int) {
	b.send(ui.LevelMsg(level))
}

// Log appends a line to the device log pane.
func (b *BubbleTeaUI) Log(text string) {
	b.send(ui.LogLineMsg(text))
}

// LogError appends a system error line, styled as an error.
func (b *BubbleTeaUI) LogError(text string) {
	b.send(ui.LogErrorMsg(text))
}

// SetStatus sets the status bar message.
func (b *BubbleTeaUI) SetStatus(text string) {
	b.send(ui.StatusMsg(text))
}

// SetConnectionState updates the connection indicator.
func (b *BubbleTeaUI) SetConnectionState(state ui.ConnectionState, target string) {
	b.send(ui.ConnectionStateMsg{State: state, Target: target})
}

// SetProgress updates the send progress bar.
func (b *BubbleTeaUI) SetProgress(sent, total int) {
	b.send(ui.ProgressMsg{Sent: sent, Total: total})
}

// UpdateBinds sends the current set of Lua-bound keys.
func (b *BubbleTeaUI) UpdateBinds(keys map[string]bool) {
	b.send(ui.UpdateBindsMsg(keys))
}
