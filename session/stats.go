package session

import (
	"runtime"

	"github.com/drake/digitpad/transport"
)

// Stats holds session statistics for monitoring.
type Stats struct {
	EventsProcessed uint64
	EventQueueLen   int
	EventQueueCap   int
	TimerQueueLen   int
	TimerQueueCap   int
	InboundLen      int
	InboundDropped  uint64
	ActiveTimers    int
	TimerMissed     uint64
	Sending         bool
	Goroutines      int
	Device          transport.Stats
}

// Stats returns current session statistics. Safe to call from any goroutine.
func (s *Session) Stats() Stats {
	return Stats{
		EventsProcessed: s.eventsProcessed.Load(),
		EventQueueLen:   len(s.events),
		EventQueueCap:   cap(s.events),
		TimerQueueLen:   len(s.timerEvents),
		TimerQueueCap:   cap(s.timerEvents),
		ActiveTimers:    s.timer.Active(),
		TimerMissed:     s.timer.Missed(),
		Sending:         s.sending.Load(),
		Goroutines:      runtime.NumGoroutine(),
		InboundLen:      s.inbound.Len(),
		InboundDropped:  s.inbound.Dropped(),
		Device:          s.device.Stats(),
	}
}
