package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// registerModules defines the engine global with its log and dice tables.
func (e *Engine) registerModules() {
	L := e.L
	engine := L.NewTable()
	L.SetField(engine, "log", e.logModule())
	L.SetField(engine, "dice", e.diceModule())
	L.SetGlobal("engine", engine)
}

func (e *Engine) logModule() *lua.LTable {
	L := e.L
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": e.logger.Debug,
		"info":  e.logger.Info,
		"warn":  e.logger.Warn,
		"error": e.logger.Error,
	}
	for name, fn := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

// diceModule exposes engine.dice.roll(expr), returning
// {total = n, values = {...}, expression = "..."}.
func (e *Engine) diceModule() *lua.LTable {
	L := e.L
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		expr := L.CheckString(1)
		res, err := e.roller.RollExpr(expr)
		if err != nil {
			L.ArgError(1, err.Error())
			return 0
		}
		values := L.NewTable()
		for _, v := range res.Values {
			values.Append(lua.LNumber(v))
		}
		out := L.NewTable()
		L.SetField(out, "total", lua.LNumber(res.Total()))
		L.SetField(out, "values", values)
		L.SetField(out, "expression", lua.LString(res.Expression))
		L.Push(out)
		return 1
	}))
	return mod
}
