package lua

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	glua "github.com/yuin/gopher-lua"
)

// setupTest creates an engine with core scripts loaded.
func setupTest(t *testing.T) (*Engine, *MockHost) {
	t.Helper()

	host := NewMockHost()
	engine := NewEngine(host)
	require.NoError(t, engine.Init())
	require.NoError(t, engine.LoadCore(CoreScripts))
	t.Cleanup(engine.Close)

	return engine, host
}

func TestPaintFromLua(t *testing.T) {
	engine, host := setupTest(t)

	require.NoError(t, engine.DoString("test", `
		n = pad.paint(14, 14, 5)
		center = pad.cell(14, 14)
		side = pad.cell(13, 14)
	`))

	assert.Equal(t, glua.LNumber(9), engine.L.GetGlobal("n"))
	assert.Equal(t, glua.LNumber(140), engine.L.GetGlobal("center"))
	assert.Equal(t, glua.LNumber(70), engine.L.GetGlobal("side"))
	assert.Equal(t, uint8(140), host.Grid.At(14, 14))
}

func TestPaintUsesCurrentLevel(t *testing.T) {
	engine, host := setupTest(t)

	require.NoError(t, engine.DoString("test", `
		pad.level(2)
		pad.paint(0, 0)
	`))
	assert.Equal(t, 2, host.Level())
	assert.Equal(t, uint8(56), host.Grid.At(0, 0))
	assert.Equal(t, uint8(28), host.Grid.At(1, 1))
}

func TestPaintOutOfRangeRaises(t *testing.T) {
	engine, _ := setupTest(t)

	err := engine.DoString("test", `pad.paint(28, 0, 5)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	err = engine.DoString("test", `pad.level(10)`)
	require.Error(t, err)
}

func TestClearSaveSendCopy(t *testing.T) {
	engine, host := setupTest(t)
	host.SendErr = errors.New("not connected")

	require.NoError(t, engine.DoString("test", `
		pad.clear()
		save_err = pad.save("out.txt")
		send_err = pad.send()
		pad.copy()
	`))

	assert.Equal(t, 1, host.ClearCalls)
	assert.Equal(t, []string{"out.txt"}, host.SaveCalls)
	assert.Equal(t, 1, host.SendCalls)
	assert.Equal(t, 1, host.CopyCalls)
	assert.Equal(t, glua.LNil, engine.L.GetGlobal("save_err"))
	assert.Equal(t, glua.LString("not connected"), engine.L.GetGlobal("send_err"))
}

func TestDeviceCalls(t *testing.T) {
	engine, host := setupTest(t)

	require.NoError(t, engine.DoString("test", `
		pad.connect("/dev/ttyACM0")
		pad.disconnect()
		pad.print("hi")
		pad.quit()
	`))

	assert.Equal(t, []string{"/dev/ttyACM0"}, host.ConnectCalls)
	assert.Equal(t, 1, host.DisconnectCalls)
	assert.Equal(t, []string{"hi"}, host.PrintCalls)
	assert.True(t, host.QuitCalled)
}

func TestPredictionHook(t *testing.T) {
	tests := []struct {
		line   string
		status string
	}{
		{"Hello, world 7!", "prediction: 7"},
		{"prediction: 3", "prediction: 3"},
		{"Predicted digit = 0", "prediction: 0"},
		{"boot ok", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			engine, host := setupTest(t)
			assert.True(t, engine.OnLine(tt.line))
			if tt.status == "" {
				assert.Empty(t, host.StatusCalls)
			} else {
				assert.Equal(t, []string{tt.status}, host.StatusCalls)
			}
		})
	}
}

func TestLineHookCanHide(t *testing.T) {
	engine, _ := setupTest(t)

	require.NoError(t, engine.DoString("test", `
		pad.on("line", function(text)
			if text:find("^#") then return false end
		end)
	`))

	assert.False(t, engine.OnLine("# debug noise"))
	assert.True(t, engine.OnLine("result 4"))
}

func TestCommandHook(t *testing.T) {
	engine, host := setupTest(t)

	require.NoError(t, engine.DoString("test", `
		pad.on("command", function(name, args)
			if name == "stamp" then
				pad.paint(tonumber(args), tonumber(args))
				return true
			end
		end)
	`))

	assert.True(t, engine.OnCommand("stamp", "3"))
	assert.Equal(t, uint8(252), host.Grid.At(3, 3))
	assert.False(t, engine.OnCommand("nope", ""))
}

func TestHookErrorsReachErrorHook(t *testing.T) {
	engine, host := setupTest(t)

	require.NoError(t, engine.DoString("test", `
		pad.on("cleared", function() error("boom") end)
	`))
	engine.CallHook("cleared")

	require.Len(t, host.PrintCalls, 1)
	assert.Contains(t, host.PrintCalls[0], "boom")
}

func TestKeyBinds(t *testing.T) {
	engine, host := setupTest(t)

	require.NoError(t, engine.DoString("test", `
		pad.bind("x", function() pad.clear() end)
		pad.bind("f2", function() pad.send() end)
	`))

	assert.Equal(t, []string{"f2", "x"}, engine.BoundKeys())
	assert.Equal(t, 2, host.BindsChanged)

	assert.True(t, engine.HandleKeyBind("x"))
	assert.Equal(t, 1, host.ClearCalls)
	assert.False(t, engine.HandleKeyBind("z"))

	require.NoError(t, engine.DoString("test", `pad.unbind("x")`))
	assert.Equal(t, []string{"f2"}, engine.BoundKeys())
}

func TestRegex(t *testing.T) {
	engine, _ := setupTest(t)
	before := engine.RegexCacheLen()

	require.NoError(t, engine.DoString("test", `
		local re = pad.regex.compile("(\\d+)x(\\d+)")
		local m = re:match("size 28x28")
		w = m[2]
		pat = re:pattern()
		direct = pad.regex.match("(\\d+)x(\\d+)", "3x4")[3]
		miss = pad.regex.match("z", "abc")
		local _, e = pad.regex.compile("(")
		compile_err = e
	`))

	assert.Equal(t, glua.LString("28"), engine.L.GetGlobal("w"))
	assert.Equal(t, glua.LString(`(\d+)x(\d+)`), engine.L.GetGlobal("pat"))
	assert.Equal(t, glua.LString("4"), engine.L.GetGlobal("direct"))
	assert.Equal(t, glua.LNil, engine.L.GetGlobal("miss"))
	assert.NotEqual(t, glua.LNil, engine.L.GetGlobal("compile_err"))
	assert.Equal(t, before+2, engine.RegexCacheLen(), "shared pattern is cached once")
}

func TestTimers(t *testing.T) {
	engine, host := setupTest(t)

	require.NoError(t, engine.DoString("test", `
		fired = 0
		once = pad.timer.after(0.5, function() fired = fired + 1 end)
		rep = pad.timer.every(2, function(missed) fired = fired + 10 + missed end)
	`))

	require.Len(t, host.ScheduledTimers, 2)
	assert.Equal(t, 500*time.Millisecond, host.ScheduledTimers[0].Duration)
	assert.True(t, host.ScheduledTimers[1].Repeat)
	assert.Equal(t, 2, engine.PendingCallbacks())

	engine.OnTimer(1, false, 0)
	engine.OnTimer(1, false, 0) // already consumed
	engine.OnTimer(2, true, 0)
	engine.OnTimer(2, true, 3)
	assert.Equal(t, glua.LNumber(24), engine.L.GetGlobal("fired"))
	assert.Equal(t, 1, engine.PendingCallbacks())

	require.NoError(t, engine.DoString("test", `pad.timer.cancel(rep)`))
	assert.Equal(t, []int{2}, host.CancelledTimers)
	assert.Equal(t, 0, engine.PendingCallbacks())
}

func TestDoFileRequiresSibling(t *testing.T) {
	engine, host := setupTest(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "helper.lua"), []byte(`return { msg = "from helper" }`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "init.lua"), []byte(`pad.print(require("helper").msg)`), 0o644))

	require.NoError(t, engine.DoFile(filepath.Join(dir, "init.lua")))
	assert.Equal(t, []string{"from helper"}, host.PrintCalls)
}

func TestInitResetsState(t *testing.T) {
	engine, _ := setupTest(t)

	require.NoError(t, engine.DoString("test", `
		pad.bind("x", function() end)
		pad.timer.after(1, function() end)
	`))
	require.NoError(t, engine.Init())

	assert.Empty(t, engine.BoundKeys())
	assert.Equal(t, 0, engine.PendingCallbacks())
}
