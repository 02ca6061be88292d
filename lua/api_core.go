package lua

import glua "github.com/yuin/gopher-lua"

// registerCoreFuncs registers the pad.* canvas, export and device functions.
func (e *Engine) registerCoreFuncs() {
	// pad.paint(x, y [, level]): Brush stroke at grid cell (x, y). Returns the
	// number of cells touched. Raises on out-of-range arguments.
	e.L.SetField(e.padTable, "paint", e.L.NewFunction(func(L *glua.LState) int {
		x := L.CheckInt(1)
		y := L.CheckInt(2)
		level := L.OptInt(3, e.host.Level())
		n, err := e.host.Paint(x, y, level)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(glua.LNumber(n))
		return 1
	}))

	// pad.clear(): Reset the canvas
	e.L.SetField(e.padTable, "clear", e.L.NewFunction(func(L *glua.LState) int {
		e.host.Clear()
		return 0
	}))

	// pad.cell(x, y): Read a stored intensity (0 outside the grid)
	e.L.SetField(e.padTable, "cell", e.L.NewFunction(func(L *glua.LState) int {
		L.Push(glua.LNumber(e.host.Cell(L.CheckInt(1), L.CheckInt(2))))
		return 1
	}))

	// pad.level([n]): Get, or set and get, the brush level
	e.L.SetField(e.padTable, "level", e.L.NewFunction(func(L *glua.LState) int {
		if L.GetTop() >= 1 {
			if err := e.host.SetLevel(L.CheckInt(1)); err != nil {
				L.RaiseError("%s", err.Error())
				return 0
			}
		}
		L.Push(glua.LNumber(e.host.Level()))
		return 1
	}))

	// pad.save([path]): Write the C literal export. Returns nil or an error string.
	e.L.SetField(e.padTable, "save", e.L.NewFunction(func(L *glua.LState) int {
		return pushErr(L, e.host.Save(L.OptString(1, "")))
	}))

	// pad.send(): Start streaming the digit to the device
	e.L.SetField(e.padTable, "send", e.L.NewFunction(func(L *glua.LState) int {
		return pushErr(L, e.host.Send())
	}))

	// pad.copy(): Put the C literal on the clipboard
	e.L.SetField(e.padTable, "copy", e.L.NewFunction(func(L *glua.LState) int {
		return pushErr(L, e.host.Copy())
	}))

	// pad.connect(target): Open a serial device or tcp:// bridge
	e.L.SetField(e.padTable, "connect", e.L.NewFunction(func(L *glua.LState) int {
		e.host.Connect(L.CheckString(1))
		return 0
	}))

	// pad.disconnect(): Close the device
	e.L.SetField(e.padTable, "disconnect", e.L.NewFunction(func(L *glua.LState) int {
		e.host.Disconnect()
		return 0
	}))

	// pad.print(text): Append a line to the log pane
	e.L.SetField(e.padTable, "print", e.L.NewFunction(func(L *glua.LState) int {
		e.host.Print(L.CheckString(1))
		return 0
	}))

	// pad.status(text): Set the status bar message
	e.L.SetField(e.padTable, "status", e.L.NewFunction(func(L *glua.LState) int {
		e.host.SetStatus(L.CheckString(1))
		return 0
	}))

	e.L.SetField(e.padTable, "quit", e.L.NewFunction(func(L *glua.LState) int {
		e.host.Quit()
		return 0
	}))

	e.L.SetField(e.padTable, "reload", e.L.NewFunction(func(L *glua.LState) int {
		e.host.Reload()
		return 0
	}))

	// pad.load(path): Run a Lua file now
	e.L.SetField(e.padTable, "load", e.L.NewFunction(func(L *glua.LState) int {
		path := L.CheckString(1)
		if err := e.DoFile(path); err != nil {
			L.Push(glua.LString(err.Error()))
			return 1
		}
		e.CallHook("loaded", path)
		return 0
	}))
}

// pushErr returns nothing on success and the error text otherwise.
func pushErr(L *glua.LState, err error) int {
	if err != nil {
		L.Push(glua.LString(err.Error()))
		return 1
	}
	return 0
}
