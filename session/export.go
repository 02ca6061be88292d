package session

import (
	"errors"
	"fmt"

	"github.com/drake/digitpad/event"
	"github.com/drake/digitpad/export"
	"github.com/drake/digitpad/grid"
)

// ErrSendInProgress is returned when a send is requested while one runs.
var ErrSendInProgress = errors.New("send already in progress")

// Save writes the text export to path, or to the configured export path
// when path is empty.
func (s *Session) Save(path string) error {
	if path == "" {
		path = s.config.Settings.ExportPath
	}
	if err := export.WriteFile(path, s.grid.Snapshot()); err != nil {
		return err
	}
	s.log.WithField("path", path).Info("Digit saved")
	s.ui.SetStatus("saved " + path)
	s.engine.CallHook("saved", path)
	return nil
}

// Copy puts the text export on the system clipboard.
func (s *Session) Copy() error {
	if err := s.writeClipboard(export.SerializeText(s.grid.Snapshot())); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	s.ui.SetStatus("copied to clipboard")
	return nil
}

// Send streams a snapshot of the grid to the device on a worker goroutine.
// Progress and completion come back to the session loop as events.
func (s *Session) Send() error {
	if s.sending.Load() {
		return ErrSendInProgress
	}
	// The writer is pinned to today's connection: a reconnect midway makes
	// the rest of the stream fail rather than land on another device.
	w, err := s.device.Writer()
	if err != nil {
		return &export.TransportError{Err: err}
	}

	snap := s.grid.Snapshot()
	opts := []export.Option{
		export.WithProgress(s.config.Settings.ProgressEvery, func(sent, total int) {
			s.post(event.Event{Type: event.SendProgress, Progress: event.Progress{Sent: sent, Total: total}})
		}),
	}
	if s.config.Settings.Checksum {
		opts = append(opts, export.WithChecksum())
	}

	s.sending.Store(true)
	s.ui.SetProgress(0, grid.Cells)
	s.ui.SetStatus("sending...")
	s.log.WithField("target", s.device.Target()).Info("Send started")

	go func() {
		err := export.Stream(s.ctx, snap, w, opts...)
		s.post(event.Event{Type: event.SendDone, Err: err})
	}()
	return nil
}

// finishSend runs on the session loop when the send worker returns.
func (s *Session) finishSend(err error) {
	s.sending.Store(false)
	if err != nil {
		s.ui.SetProgress(0, 0)
		s.reportError(fmt.Errorf("send: %w", err))
		return
	}
	s.ui.SetProgress(grid.Cells, grid.Cells)
	s.ui.SetStatus(fmt.Sprintf("sent %d cells", grid.Cells))
	s.log.Info("Send complete")
	s.engine.CallHook("sent", grid.Cells)
}

// Sending reports whether a send is in flight.
func (s *Session) Sending() bool {
	return s.sending.Load()
}
