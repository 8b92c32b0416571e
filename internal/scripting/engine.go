package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/action"
	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// Engine owns one sandboxed LState holding every loaded hook.
//
// Engine is safe for concurrent use; calls into the VM are serialized.
type Engine struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	roller *dice.Roller
	logger *zap.Logger
}

// NewEngine creates an Engine with the engine.* modules registered.
//
// Precondition: roller and logger must be non-nil; instLimit <= 0 uses
// DefaultInstructionLimit.
func NewEngine(roller *dice.Roller, logger *zap.Logger, instLimit int) *Engine {
	if roller == nil {
		panic("scripting.NewEngine: precondition violated: roller must be non-nil")
	}
	if logger == nil {
		panic("scripting.NewEngine: precondition violated: logger must be non-nil")
	}
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	e := &Engine{
		L:      NewSandboxedState(),
		limit:  instLimit,
		roller: roller,
		logger: logger,
	}
	e.registerModules()
	return e
}

// LoadDir executes every *.lua file in dir in lexicographic order.
//
// Postcondition: Returns an error naming the first file that fails to load.
func (e *Engine) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var luaFiles []string
	for _, ent := range entries {
		if !ent.IsDir() && filepath.Ext(ent.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, ent.Name()))
		}
	}
	sort.Strings(luaFiles)

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, path := range luaFiles {
		if err := limited(e.L, e.limit, func() error { return e.L.DoFile(path) }); err != nil {
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}
	e.logger.Info("scripts loaded", zap.String("dir", dir), zap.Int("files", len(luaFiles)))
	return nil
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if the
// hook is not defined. Lua runtime errors, including exceeding the
// instruction limit, are logged at Warn level and returned as LNil.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (e *Engine) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}
	err := limited(e.L, e.limit, func() error {
		return e.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
	if err != nil {
		e.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}
	ret := e.L.Get(-1)
	e.L.Pop(1)
	return ret, nil
}

// ResolutionDamage calls hook(result, roll, gap, base) and returns the number
// it yields. result is the tier name, e.g. "critical_success".
//
// Postcondition: Returns an error when the hook is missing, fails, or does
// not return a non-negative number.
func (e *Engine) ResolutionDamage(hook string, res action.Resolution, base int) (int, error) {
	ret, err := e.CallHook(hook,
		lua.LString(res.Result.String()),
		lua.LNumber(res.Roll),
		lua.LNumber(res.Gap),
		lua.LNumber(base),
	)
	if err != nil {
		return 0, err
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("scripting: hook %q returned %s, want number", hook, ret.Type())
	}
	if n < 0 {
		return 0, fmt.Errorf("scripting: hook %q returned negative damage %v", hook, n)
	}
	e.logger.Debug("resolution hook",
		zap.String("hook", hook),
		zap.Stringer("result", res.Result),
		zap.Int("roll", res.Roll),
		zap.Int("damage", int(n)),
	)
	return int(n), nil
}

// Close releases the VM. The Engine must not be used afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.L.Close()
}
