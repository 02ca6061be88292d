package lua

import (
	"sort"

	glua "github.com/yuin/gopher-lua"
)

// registerBindFuncs registers the pad.bind API.
func (e *Engine) registerBindFuncs() {
	// pad.bind(key, callback): key is a string like "ctrl+r", "f1" or "x".
	e.L.SetField(e.padTable, "bind", e.L.NewFunction(func(L *glua.LState) int {
		key := L.CheckString(1)
		fn := L.CheckFunction(2)
		e.binds[key] = fn
		e.host.OnBindsChange()
		return 0
	}))

	e.L.SetField(e.padTable, "unbind", e.L.NewFunction(func(L *glua.LState) int {
		key := L.CheckString(1)
		if _, ok := e.binds[key]; ok {
			delete(e.binds, key)
			e.host.OnBindsChange()
		}
		return 0
	}))
}

// HandleKeyBind runs the binding for key.
// Returns true if the key was bound.
func (e *Engine) HandleKeyBind(key string) bool {
	fn, ok := e.binds[key]
	if !ok {
		return false
	}

	e.L.Push(fn)
	if err := e.L.PCall(0, 0, nil); err != nil {
		e.CallHook("error", "keybind: "+err.Error())
	}
	return true
}

// BoundKeys returns all bound key names, sorted.
func (e *Engine) BoundKeys() []string {
	keys := make([]string, 0, len(e.binds))
	for key := range e.binds {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
