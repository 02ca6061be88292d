package lua

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	glua "github.com/yuin/gopher-lua"
)

const regexCacheSize = 100

// Engine wraps gopher-lua and manages the VM lifecycle.
// It knows how to run Lua code and expose the pad API; what to load and
// when is the session's job.
type Engine struct {
	L          *glua.LState
	regexCache *lru.Cache[string, *regexp.Regexp]

	// Cached reference to the global pad table
	padTable *glua.LTable

	host Host

	// Timer callbacks. The timer service owns IDs and scheduling.
	callbacks map[int]*glua.LFunction

	binds map[string]*glua.LFunction
}

// NewEngine creates an Engine with the given Host.
func NewEngine(host Host) *Engine {
	cache, _ := lru.New[string, *regexp.Regexp](regexCacheSize)
	return &Engine{
		regexCache: cache,
		host:       host,
		callbacks:  make(map[int]*glua.LFunction),
		binds:      make(map[string]*glua.LFunction),
	}
}

// --- Lifecycle ---

// Init initializes (or re-initializes) the Lua VM with fresh state.
// It registers the API but does not load any scripts.
func (e *Engine) Init() error {
	if e.L != nil {
		e.L.Close()
	}

	e.L = glua.NewState()

	cache, _ := lru.New[string, *regexp.Regexp](regexCacheSize)
	e.regexCache = cache

	// Timers and binds belong to the previous VM.
	e.host.TimerCancelAll()
	e.callbacks = make(map[int]*glua.LFunction)
	e.binds = make(map[string]*glua.LFunction)

	e.registerAPIs()
	return nil
}

// Close cleans up the Lua state.
func (e *Engine) Close() {
	e.host.TimerCancelAll()
	e.callbacks = nil
	if e.L != nil {
		e.L.Close()
		e.L = nil
	}
}

// OnTimer runs the callback for a fired timer. The callback receives the
// number of ticks that were missed because the session was busy.
func (e *Engine) OnTimer(id int, repeating bool, missed int) {
	if e.L == nil {
		return
	}

	fn, ok := e.callbacks[id]
	if !ok {
		return // Cancelled, or belonged to a previous VM
	}

	e.L.Push(fn)
	e.L.Push(glua.LNumber(missed))
	if err := e.L.PCall(1, 0, nil); err != nil {
		e.CallHook("error", "timer: "+err.Error())
	}

	if !repeating {
		delete(e.callbacks, id)
	}
}

// --- Execution ---

// DoString executes a string of Lua code. name appears in stack traces.
func (e *Engine) DoString(name, code string) error {
	fn, err := e.L.Load(strings.NewReader(code), name)
	if err != nil {
		return err
	}
	e.L.Push(fn)
	return e.L.PCall(0, 0, nil)
}

// DoFile executes a Lua file with its directory prepended to package.path
// so it can require siblings.
func (e *Engine) DoFile(path string) error {
	path = expandTilde(path)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(absPath)

	pkg := e.L.GetGlobal("package").(*glua.LTable)
	oldPath := e.L.GetField(pkg, "path").String()
	e.L.SetField(pkg, "path", glua.LString(dir+"/?.lua;"+oldPath))

	err = e.L.DoFile(absPath)

	e.L.SetField(pkg, "path", glua.LString(oldPath))
	return err
}

// --- Hooks ---

// OnLine offers a device line to the "line" hooks.
// It returns false if a hook asked for the line to be hidden.
func (e *Engine) OnLine(text string) bool {
	return e.callHooks("line", text) != glua.LFalse
}

// OnCommand offers an unknown command to the "command" hooks.
// It returns true if a hook handled it.
func (e *Engine) OnCommand(name, args string) bool {
	return e.callHooks("command", name, args) == glua.LTrue
}

// CallHook fires a hook event. Arguments may be strings, ints or bools.
func (e *Engine) CallHook(event string, args ...any) {
	e.callHooks(event, args...)
}

func (e *Engine) callHooks(event string, args ...any) glua.LValue {
	if e.L == nil || e.padTable == nil {
		return glua.LNil
	}

	call := e.getHooksCall()
	if call == glua.LNil {
		return glua.LNil
	}

	luaArgs := make([]glua.LValue, 0, len(args)+1)
	luaArgs = append(luaArgs, glua.LString(event))
	for _, a := range args {
		luaArgs = append(luaArgs, toLValue(a))
	}

	if err := e.L.CallByParam(glua.P{
		Fn:      call,
		NRet:    1,
		Protect: true,
	}, luaArgs...); err != nil {
		return glua.LNil
	}

	ret := e.L.Get(-1)
	e.L.Pop(1)
	return ret
}

// getHooksCall returns pad.hooks.call, or LNil before core scripts load.
func (e *Engine) getHooksCall() glua.LValue {
	hooks, ok := e.L.GetField(e.padTable, "hooks").(*glua.LTable)
	if !ok {
		return glua.LNil
	}
	return e.L.GetField(hooks, "call")
}

// --- API registration ---

func (e *Engine) registerAPIs() {
	e.padTable = e.L.NewTable()
	e.L.SetGlobal("pad", e.padTable)

	e.registerCoreFuncs()
	e.registerBindFuncs()
	e.registerRegexFuncs()
	e.registerTimerFuncs()
}

// --- Helpers ---

func toLValue(v any) glua.LValue {
	switch v := v.(type) {
	case string:
		return glua.LString(v)
	case int:
		return glua.LNumber(v)
	case bool:
		return glua.LBool(v)
	case nil:
		return glua.LNil
	default:
		return glua.LNil
	}
}

// expandTilde expands ~ to home directory.
func expandTilde(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
