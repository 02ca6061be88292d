package session

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/x/ansi"
	"github.com/sirupsen/logrus"

	"github.com/drake/digitpad/config"
	"github.com/drake/digitpad/event"
	"github.com/drake/digitpad/grid"
	"github.com/drake/digitpad/internal/buffer"
	"github.com/drake/digitpad/lua"
	"github.com/drake/digitpad/timer"
	"github.com/drake/digitpad/transport"
	"github.com/drake/digitpad/ui"
)

// Ensure Session implements lua.Host at compile time
var _ lua.Host = (*Session)(nil)

// Inbound line queue sizing. The device talks far less than this; the
// limit only matters if the UI stalls.
const (
	inboundInitialCap = 64
	inboundHardLimit  = 10000
)

// Config holds session configuration
type Config struct {
	Settings    config.Config
	CoreScripts fs.FS    // Embedded core Lua scripts
	UserScripts []string // CLI script arguments
}

// Session owns the grid and orchestrates the device, UI, scripting and
// timers. Every grid mutation happens on the processEvents goroutine.
type Session struct {
	// State owned by the session loop
	grid  *grid.Grid
	level int

	// Components
	device transport.Device
	ui     ui.UI
	engine *lua.Engine
	timer  *timer.Service

	// Channels
	events      chan event.Event
	timerEvents chan timer.Event
	inbound     *buffer.Queue[transport.Line]

	config Config

	// writeClipboard is swapped out in tests.
	writeClipboard func(string) error

	// Stats
	sending         atomic.Bool
	eventsProcessed atomic.Uint64

	// Shutdown coordination
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once

	log *logrus.Entry
}

// New creates a new Session. Apart from the inbound queue, nothing runs
// until Run.
func New(device transport.Device, display ui.UI, cfg Config) *Session {
	timerEvents := make(chan timer.Event, 1024)
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		grid:           grid.New(),
		level:          grid.MaxLevel,
		device:         device,
		ui:             display,
		timer:          timer.NewService(timerEvents),
		timerEvents:    timerEvents,
		events:         make(chan event.Event, 1024),
		config:         cfg,
		writeClipboard: clipboard.WriteAll,
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
		loopDone:       make(chan struct{}),
		log:            logrus.WithField("component", "session"),
	}
	s.inbound = buffer.NewQueue[transport.Line]("device-lines", inboundInitialCap, inboundHardLimit)

	s.engine = lua.NewEngine(s)

	return s
}

// Run starts the session and blocks until the UI exits.
func (s *Session) Run() error {
	defer s.engine.Close()

	s.ui.LoadCanvas(s.grid.Snapshot())
	s.ui.SetLevel(s.level)

	// Boot the system
	if err := s.boot(); err != nil {
		s.log.WithError(err).Error("Boot failed")
		s.ui.LogError(fmt.Sprintf("[System] Boot Error: %v", err))
	}

	if port := s.config.Settings.Port; port != "" {
		s.events <- event.Event{
			Type:    event.SystemControl,
			Control: event.ControlOp{Action: event.ActionConnect, Target: port},
		}
	}

	go s.pumpLines()
	go s.processEvents()

	err := s.ui.Run()
	s.shutdown()
	<-s.loopDone
	return err
}

// pumpLines moves device lines into the inbound queue so the transport
// reader never waits on the session.
func (s *Session) pumpLines() {
	defer close(s.inbound.In())
	for {
		select {
		case <-s.done:
			return
		case line := <-s.device.Lines():
			s.inbound.In() <- line
		}
	}
}

// processEvents is the main event loop.
func (s *Session) processEvents() {
	defer close(s.loopDone)

	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			s.handleEvent(ev)
		case msg := <-s.ui.Outbound():
			s.handleUIEvent(msg)
		case line, ok := <-s.inbound.Out():
			if ok {
				s.handleEvent(event.Event{Type: event.DeviceLine, Payload: line.Text})
			}
		case ev := <-s.device.Events():
			s.handleDeviceEvent(ev)
		case ev := <-s.timerEvents:
			s.engine.OnTimer(ev.ID, ev.Repeating, ev.Missed)
		}
		s.eventsProcessed.Add(1)
	}
}

// handleEvent executes a single event on the session loop.
func (s *Session) handleEvent(ev event.Event) {
	switch ev.Type {
	case event.DeviceLine:
		// Device output is opaque log text; escape sequences would fight
		// the TUI for the screen.
		text := ansi.Strip(ev.Payload)
		if s.engine.OnLine(text) {
			s.ui.Log(text)
		}

	case event.SendProgress:
		s.ui.SetProgress(ev.Progress.Sent, ev.Progress.Total)

	case event.SendDone:
		s.finishSend(ev.Err)

	case event.AsyncResult:
		if ev.Callback != nil {
			ev.Callback()
		}

	case event.SystemControl:
		s.handleControl(ev.Control)
	}
}

// handleControl processes system control events.
func (s *Session) handleControl(ctrl event.ControlOp) {
	switch ctrl.Action {
	case event.ActionQuit:
		s.shutdown()
	case event.ActionConnect:
		s.Connect(ctrl.Target)
	case event.ActionDisconnect:
		s.Disconnect()
	case event.ActionReload:
		s.reboot()
	case event.ActionLoadScript:
		s.loadScript(ctrl.ScriptPath)
	}
}

// post hands an event to the session loop from another goroutine.
func (s *Session) post(ev event.Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// boot loads the VM state.
func (s *Session) boot() error {
	if err := s.engine.Init(); err != nil {
		return err
	}

	// Set config directory
	setupCode := fmt.Sprintf("pad.config_dir = [[%s]]", s.config.Settings.ConfigDir)
	if err := s.engine.DoString("boot_config", setupCode); err != nil {
		return err
	}

	if s.config.CoreScripts != nil {
		if err := s.engine.LoadCore(s.config.CoreScripts); err != nil {
			return err
		}
	}

	// Load user init.lua
	initPath := filepath.Join(s.config.Settings.ConfigDir, "init.lua")
	if _, err := os.Stat(initPath); err == nil {
		if err := s.engine.DoFile(initPath); err != nil {
			return fmt.Errorf("init.lua: %w", err)
		}
	}

	// Load CLI scripts
	for _, path := range s.config.UserScripts {
		if err := s.engine.DoFile(path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	s.OnBindsChange()
	s.engine.CallHook("ready")
	return nil
}

// reboot rebuilds the Lua state. It runs as its own event because it
// destroys the VM that may have asked for it.
func (s *Session) reboot() {
	if err := s.boot(); err != nil {
		s.log.WithError(err).Error("Reload failed")
		s.ui.LogError(fmt.Sprintf("[System] Reload Failed: %v", err))
		return
	}
	s.engine.CallHook("reloaded")
}

// loadScript loads a Lua script file and notifies hooks.
func (s *Session) loadScript(path string) {
	if path == "" {
		s.reportError(fmt.Errorf("load: empty path"))
		return
	}
	if err := s.engine.DoFile(path); err != nil {
		s.reportError(fmt.Errorf("load %s: %w", path, err))
		return
	}
	s.engine.CallHook("loaded", path)
}

// reportError logs err, shows it in the status bar and fires the error hook.
func (s *Session) reportError(err error) {
	s.log.WithError(err).Warn("Operation failed")
	s.ui.SetStatus(err.Error())
	s.engine.CallHook("error", err.Error())
}

// shutdown stops goroutines, timers, the device and the UI exactly once.
func (s *Session) shutdown() {
	s.closeOnce.Do(func() {
		s.log.Info("Shutting down")
		s.cancel()
		close(s.done)
		s.timer.CancelAll()
		s.device.Close()
		s.ui.Quit()
	})
}

// Done is closed once the session has shut down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
