package ui

import "github.com/drake/digitpad/grid"

// UI defines the contract for the display layer.
// Push methods never block the caller for long and are safe to call from
// any goroutine.
type UI interface {
	Run() error
	Quit()
	Done() <-chan struct{}

	// Outbound carries user requests (UIEvent values) to the session.
	Outbound() <-chan UIEvent

	// Canvas
	UpdateCells(cells []grid.Cell)
	LoadCanvas(s grid.Snapshot)
	SetLevel(level int)

	// Chrome
	Log(text string)
	LogError(text string)
	SetStatus(text string)
	SetConnectionState(state ConnectionState, target string)
	SetProgress(sent, total int)
	UpdateBinds(keys map[string]bool)
}
