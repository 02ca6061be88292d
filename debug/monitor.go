// Package debug provides runtime monitoring and diagnostics.
package debug

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/drake/digitpad/session"
)

// EnvDebug turns the monitor on when set to "1".
const EnvDebug = "DIGITPAD_DEBUG"

// Enabled returns true if debug mode is active (DIGITPAD_DEBUG=1).
func Enabled() bool {
	return os.Getenv(EnvDebug) == "1"
}

// StatsSource is anything that can report session statistics.
type StatsSource interface {
	Stats() session.Stats
}

// Monitor periodically logs session statistics when debug mode is enabled.
type Monitor struct {
	source   StatsSource
	interval time.Duration
	ctx      context.Context
	log      *logrus.Entry
}

// NewMonitor creates a new monitor for the given session.
// If debug mode is not enabled, returns nil.
func NewMonitor(ctx context.Context, source StatsSource) *Monitor {
	if !Enabled() {
		return nil
	}
	return newMonitor(ctx, source, 5*time.Second)
}

func newMonitor(ctx context.Context, source StatsSource, interval time.Duration) *Monitor {
	return &Monitor{
		source:   source,
		interval: interval,
		ctx:      ctx,
		log:      logrus.WithField("component", "debug"),
	}
}

// Start begins the monitoring loop in a goroutine.
func (m *Monitor) Start() {
	if m == nil {
		return
	}
	go m.run()
}

func (m *Monitor) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.log.Debug("Monitor started")

	for {
		select {
		case <-m.ctx.Done():
			m.log.Debug("Monitor stopped")
			return
		case <-ticker.C:
			m.logStats()
		}
	}
}

func (m *Monitor) logStats() {
	s := m.source.Stats()

	lastRead := "never"
	if !s.Device.LastReadTime.IsZero() {
		lastRead = time.Since(s.Device.LastReadTime).Round(time.Second).String() + " ago"
	}

	m.log.WithFields(logrus.Fields{
		"events":       s.EventsProcessed,
		"event_queue":  s.EventQueueLen,
		"timer_queue":  s.TimerQueueLen,
		"inbound":      s.InboundLen,
		"dropped":      s.InboundDropped,
		"timers":       s.ActiveTimers,
		"timer_missed": s.TimerMissed,
		"sending":      s.Sending,
		"goroutines":   s.Goroutines,
		"connected":    s.Device.Connected,
		"target":       s.Device.Target,
		"read":         s.Device.BytesRead,
		"written":      s.Device.BytesWritten,
		"lines_in":     s.Device.LinesRead,
		"lines_out":    s.Device.LinesWritten,
		"last_read":    lastRead,
	}).Info("Stats")
}
