package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tactics/internal/scripting"
)

func TestNewSandboxedState_UnsafeLibsNil(t *testing.T) {
	L := scripting.NewSandboxedState()
	require.NotNil(t, L)
	defer L.Close()
	for _, name := range []string{"os", "io", "debug"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandboxedState_DangerousGlobalsNil(t *testing.T) {
	L := scripting.NewSandboxedState()
	require.NotNil(t, L)
	defer L.Close()
	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandboxedState_SafeLibsAvailable(t *testing.T) {
	L := scripting.NewSandboxedState()
	require.NotNil(t, L)
	defer L.Close()
	err := L.DoString(`
		local x = math.sqrt(4)
		assert(x == 2.0, "math.sqrt failed")
		local s = string.upper("hello")
		assert(s == "HELLO", "string.upper failed")
	`)
	assert.NoError(t, err)
}

func TestEngine_InstructionLimit_LoadFails(t *testing.T) {
	e := scripting.NewEngine(testRoller(0), zap.NewNop(), 10)
	defer e.Close()
	dir := writeTempLua(t, "spin.lua", `while true do end`)
	assert.Error(t, e.LoadDir(dir))
}

func TestEngine_InstructionLimit_FreshBudgetPerCall(t *testing.T) {
	e, logs := newTestEngine(t, 200)
	dir := writeTempLua(t, "hooks.lua", `
		function spin() while true do end end
		function ok() return 1 end
	`)
	require.NoError(t, e.LoadDir(dir))

	ret, err := e.CallHook("spin")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())

	for i := 0; i < 5; i++ {
		ret, err = e.CallHook("ok")
		require.NoError(t, err)
		assert.Equal(t, lua.LNumber(1), ret, "each call gets its own budget")
	}
}

func TestProperty_InstructionLimitAlwaysStopsLoops(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 50).Draw(rt, "limit")
		e := scripting.NewEngine(testRoller(0), zap.NewNop(), limit)
		defer e.Close()
		dir := writeTempLua(t, "spin.lua", `while true do end`)
		if err := e.LoadDir(dir); err == nil {
			rt.Fatalf("expected error with limit=%d but got nil", limit)
		}
	})
}
