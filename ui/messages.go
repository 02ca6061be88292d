package ui

import "github.com/drake/digitpad/grid"

// --- Session -> UI ---

// CellsMsg carries cells changed by a brush stroke.
type CellsMsg []grid.Cell

// CanvasMsg replaces the whole canvas (start-up, clear).
type CanvasMsg grid.Snapshot

// LevelMsg sets the brush level indicator.
type LevelMsg int

// LogLineMsg appends a line to the device log pane.
type LogLineMsg string

// LogErrorMsg appends a system error line to the log pane.
type LogErrorMsg string

// StatusMsg sets the status bar message.
type StatusMsg string

// ConnectionStateMsg notifies the UI of connection state changes.
type ConnectionStateMsg struct {
	State  ConnectionState
	Target string
}

// ProgressMsg reports send progress. Sent == Total ends the progress display.
type ProgressMsg struct {
	Sent  int
	Total int
}

// UpdateBindsMsg carries the set of keys bound from Lua.
type UpdateBindsMsg map[string]bool

// --- UI -> Session ---

// UIEvent is any message the UI sends to the session.
type UIEvent = any

// PaintRequest asks for a brush stroke at grid cell (X, Y).
// The UI only sends cells inside the grid.
type PaintRequest struct {
	X, Y int
}

// SetLevelRequest asks to change the brush level.
type SetLevelRequest int

// ClearRequest asks to reset the canvas.
type ClearRequest struct{}

// SaveRequest asks to write the text export. Empty Path means the default.
type SaveRequest struct {
	Path string
}

// SendRequest asks to stream the digit to the device.
type SendRequest struct{}

// CopyRequest asks to copy the text export to the clipboard.
type CopyRequest struct{}

// CommandMsg is a line typed in the command input, without the leading ':'.
type CommandMsg string

// ExecuteBindMsg asks the session to run a Lua key binding.
type ExecuteBindMsg string

// QuitRequest asks the session to shut down.
type QuitRequest struct{}
