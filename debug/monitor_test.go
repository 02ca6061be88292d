package debug

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drake/digitpad/session"
	"github.com/drake/digitpad/transport"
)

type fakeSource struct{}

func (fakeSource) Stats() session.Stats {
	return session.Stats{
		EventsProcessed: 42,
		Device:          transport.Stats{Connected: true, Target: "/dev/ttyACM0"},
	}
}

func TestNewMonitorDisabled(t *testing.T) {
	t.Setenv(EnvDebug, "")
	assert.Nil(t, NewMonitor(context.Background(), fakeSource{}))

	// Start on a nil monitor is a no-op.
	var m *Monitor
	m.Start()
}

func TestMonitorLogsStats(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	newMonitor(ctx, fakeSource{}, 5*time.Millisecond).Start()

	require.Eventually(t, func() bool {
		for _, e := range hook.AllEntries() {
			if e.Message == "Stats" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	for _, e := range hook.AllEntries() {
		if e.Message == "Stats" {
			assert.Equal(t, logrus.InfoLevel, e.Level)
			assert.Equal(t, uint64(42), e.Data["events"])
			assert.Equal(t, "/dev/ttyACM0", e.Data["target"])
			assert.Equal(t, "never", e.Data["last_read"])
			break
		}
	}
}
