package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drake/digitpad/event"
	"github.com/drake/digitpad/transport"
	"github.com/drake/digitpad/ui"
)

const connectTimeout = 10 * time.Second

// Connect opens target, or the configured port when target is empty.
// The open runs off the session loop; the Connected event from the device
// completes it. It is refused while a send is in flight.
func (s *Session) Connect(target string) {
	if s.sending.Load() {
		s.reportError(fmt.Errorf("connect: %w", ErrSendInProgress))
		return
	}
	if target == "" {
		target = s.config.Settings.Port
	}
	if target == "" {
		s.reportError(errors.New("connect: no port given"))
		return
	}

	s.ui.SetConnectionState(ui.StateConnecting, target)
	s.engine.CallHook("connecting", target)

	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, connectTimeout)
		defer cancel()

		err := s.device.Open(ctx, target)
		if err == nil || errors.Is(err, transport.ErrSuperseded) {
			return
		}
		s.post(event.Event{
			Type: event.AsyncResult,
			Callback: func() {
				s.ui.SetConnectionState(ui.StateDisconnected, "")
				s.reportError(fmt.Errorf("connect %s: %w", target, err))
			},
		})
	}()
}

// Disconnect closes the device. A send in flight fails on its next write
// and is reported through finishSend.
func (s *Session) Disconnect() {
	if !s.device.Connected() {
		// Abandons a dial still in progress.
		s.device.Close()
		s.ui.SetConnectionState(ui.StateDisconnected, "")
		return
	}
	target := s.device.Target()
	s.device.Close()
	s.ui.SetConnectionState(ui.StateDisconnected, "")
	s.ui.Log(fmt.Sprintf("[System] Disconnected from %s", target))
	s.engine.CallHook("disconnected", target)
}

// handleDeviceEvent reacts to connection lifecycle changes.
func (s *Session) handleDeviceEvent(ev transport.Event) {
	switch ev.Kind {
	case transport.EventConnected:
		s.ui.SetConnectionState(ui.StateConnected, ev.Target)
		s.ui.Log(fmt.Sprintf("[System] Connected to %s", ev.Target))
		s.engine.CallHook("connected", ev.Target)

	case transport.EventDisconnected:
		s.ui.SetConnectionState(ui.StateDisconnected, "")
		if ev.Err != nil {
			s.ui.LogError(fmt.Sprintf("[System] Lost %s: %v", ev.Target, ev.Err))
		}
		s.engine.CallHook("disconnected", ev.Target)
	}
}

// listPorts prints the serial devices the OS reports.
func (s *Session) listPorts() {
	ports, err := transport.ListPorts()
	if err != nil {
		s.reportError(fmt.Errorf("ports: %w", err))
		return
	}
	if len(ports) == 0 {
		s.ui.Log("[System] No serial ports found")
		return
	}
	for _, p := range ports {
		s.ui.Log("  " + p)
	}
}
