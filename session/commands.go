package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/drake/digitpad/event"
)

// runCommand executes a line typed after ':'.
func (s *Session) runCommand(line string) {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	args = strings.TrimSpace(args)

	var err error
	switch name {
	case "":
		return
	case "clear":
		s.Clear()
	case "save":
		err = s.Save(args)
	case "send":
		err = s.Send()
	case "copy":
		err = s.Copy()
	case "level":
		var n int
		if n, err = strconv.Atoi(args); err != nil {
			err = fmt.Errorf("level: want a number from 1 to 9, got %q", args)
			break
		}
		err = s.SetLevel(n)
	case "connect":
		s.Connect(args)
	case "disconnect":
		s.Disconnect()
	case "ports":
		s.listPorts()
	case "lua":
		err = s.engine.DoString("command", args)
	case "load":
		s.loadScript(args)
	case "reload":
		s.Reload()
	case "quit", "q":
		s.shutdown()
	default:
		if !s.engine.OnCommand(name, args) {
			err = fmt.Errorf("unknown command: %s", name)
		}
	}

	if err != nil {
		s.reportError(err)
	}
}

// Reload rebuilds the Lua state on the next loop iteration.
func (s *Session) Reload() {
	s.engine.CallHook("reloading")
	select {
	case s.events <- event.Event{
		Type:    event.SystemControl,
		Control: event.ControlOp{Action: event.ActionReload},
	}:
	default:
		s.reportError(errors.New("reload: event queue full"))
	}
}
