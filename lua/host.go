package lua

import "time"

// Host provides the bridge between Engine and the rest of the system.
// All methods are called on the session goroutine.
type Host interface {
	// Canvas
	Paint(x, y, level int) (int, error) // Returns touched cell count
	Clear()
	Cell(x, y int) int
	Level() int
	SetLevel(level int) error

	// Export
	Save(path string) error
	Send() error
	Copy() error

	// Device
	Connect(target string)
	Disconnect()

	// Display
	Print(text string)
	SetStatus(text string)

	// Lifecycle
	Quit()
	Reload()

	// Timers
	TimerAfter(d time.Duration) int
	TimerEvery(d time.Duration) int
	TimerCancel(id int)
	TimerCancelAll()

	// OnBindsChange is called when pad.bind or pad.unbind changes the set
	// of bound keys, so the host can push it to the UI.
	OnBindsChange()
}
