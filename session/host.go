package session

import (
	"time"
)

// Print appends a line to the log pane.
func (s *Session) Print(text string) {
	s.ui.Log(text)
}

// SetStatus sets the status bar message.
func (s *Session) SetStatus(text string) {
	s.ui.SetStatus(text)
}

// Quit shuts the session down.
func (s *Session) Quit() {
	s.shutdown()
}

// OnBindsChange pushes the bound key set to the UI.
func (s *Session) OnBindsChange() {
	keys := make(map[string]bool)
	for _, k := range s.engine.BoundKeys() {
		keys[k] = true
	}
	s.ui.UpdateBinds(keys)
}

// TimerAfter schedules a one-shot timer. Returns the timer ID.
func (s *Session) TimerAfter(d time.Duration) int {
	return s.timer.After(d)
}

// TimerEvery schedules a repeating timer. Returns the timer ID.
func (s *Session) TimerEvery(d time.Duration) int {
	return s.timer.Every(d)
}

// TimerCancel cancels a timer by ID.
func (s *Session) TimerCancel(id int) {
	s.timer.Cancel(id)
}

// TimerCancelAll cancels all timers.
func (s *Session) TimerCancelAll() {
	s.timer.CancelAll()
}
