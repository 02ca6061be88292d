package lua

import (
	"time"

	glua "github.com/yuin/gopher-lua"
)

// registerTimerFuncs registers pad.timer.*
func (e *Engine) registerTimerFuncs() {
	timerTable := e.L.NewTable()
	e.L.SetField(e.padTable, "timer", timerTable)

	// pad.timer.after(seconds, callback): One-shot timer, returns ID
	e.L.SetField(timerTable, "after", e.L.NewFunction(func(L *glua.LState) int {
		seconds := L.CheckNumber(1)
		fn := L.CheckFunction(2)

		id := e.host.TimerAfter(toDuration(seconds))
		e.callbacks[id] = fn

		L.Push(glua.LNumber(id))
		return 1
	}))

	// pad.timer.every(seconds, callback): Repeating timer, returns ID
	e.L.SetField(timerTable, "every", e.L.NewFunction(func(L *glua.LState) int {
		seconds := L.CheckNumber(1)
		fn := L.CheckFunction(2)

		id := e.host.TimerEvery(toDuration(seconds))
		e.callbacks[id] = fn

		L.Push(glua.LNumber(id))
		return 1
	}))

	// pad.timer.cancel(id)
	e.L.SetField(timerTable, "cancel", e.L.NewFunction(func(L *glua.LState) int {
		id := L.CheckInt(1)
		if _, ok := e.callbacks[id]; ok {
			delete(e.callbacks, id)
			e.host.TimerCancel(id)
		}
		return 0
	}))

	// pad.timer.cancel_all()
	e.L.SetField(timerTable, "cancel_all", e.L.NewFunction(func(L *glua.LState) int {
		e.callbacks = make(map[int]*glua.LFunction)
		e.host.TimerCancelAll()
		return 0
	}))
}

// PendingCallbacks returns the number of live timer callbacks.
func (e *Engine) PendingCallbacks() int {
	return len(e.callbacks)
}

// toDuration converts Lua number seconds to Go duration
func toDuration(seconds glua.LNumber) time.Duration {
	return time.Duration(float64(seconds) * float64(time.Second))
}
