package engine

import (
	"bytes"
	"os"
	"strings"

	"github.com/roadrunner-server/errors"
	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"
)

// OpenAux is the user extension point, called once with the fresh Lua state
// to register additional bindings.
type OpenAux func(L *lua.LState) error

// newScriptEnv opens the Lua state, installs the engine builtins and the message handler.
// The state is used exclusively by the dispatch goroutine once the engine runs.
func (s *Server) newScriptEnv(aux OpenAux) error {
	const op = errors.Op("engine_script_env")

	L := lua.NewState()
	s.installClock(L)

	// trace(...) writes its arguments to the engine trace, tab separated
	L.SetGlobal("trace", L.NewFunction(func(L *lua.LState) int {
		top := L.GetTop()
		parts := make([]string, 0, top)
		for i := 1; i <= top; i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		s.trace.Println(strings.Join(parts, "\t"))
		return 0
	}))

	// error channel for protected calls made by jobs
	s.msgh = L.NewFunction(func(L *lua.LState) int {
		msg := L.ToStringMeta(L.Get(1)).String()
		s.trace.Printf("Lua error: %s", msg)
		L.Push(lua.LString(msg))
		return 1
	})

	if aux != nil {
		err := aux(L)
		if err != nil {
			L.Close()
			return errors.E(op, err)
		}
	}

	s.L = L
	return nil
}

// loadInitScript runs the init script from the filesystem root. A missing script is not an error.
func (s *Server) loadInitScript() error {
	const op = errors.Op("engine_load_init_script")
	if s.fs == nil {
		return nil
	}

	data, err := afero.ReadFile(s.fs, s.cfg.InitScript)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug("no init script found, skipping")
			return nil
		}
		return errors.E(op, err)
	}

	fn, err := s.L.Load(bytes.NewReader(data), "@"+s.cfg.InitScript)
	if err != nil {
		return errors.E(op, err)
	}

	s.L.Push(fn)
	err = s.L.PCall(0, 0, s.msgh)
	if err != nil {
		return errors.E(op, err)
	}

	return nil
}

// installClock routes os.time() and os.date() without an explicit time through the engine clock.
func (s *Server) installClock(L *lua.LState) {
	osmod, ok := L.GetGlobal("os").(*lua.LTable)
	if !ok {
		return
	}

	osTime := L.GetField(osmod, "time")
	osDate := L.GetField(osmod, "date")

	L.SetField(osmod, "time", L.NewFunction(func(L *lua.LState) int {
		if L.GetTop() == 0 || L.Get(1) == lua.LNil {
			L.Push(lua.LNumber(s.now().Unix()))
			return 1
		}
		return callThrough(L, osTime, L.Get(1))
	}))

	L.SetField(osmod, "date", L.NewFunction(func(L *lua.LState) int {
		format := L.OptString(1, "%c")
		if L.GetTop() >= 2 {
			return callThrough(L, osDate, lua.LString(format), L.Get(2))
		}
		return callThrough(L, osDate, lua.LString(format), lua.LNumber(s.now().Unix()))
	}))
}

// callThrough calls fn with args and leaves all its results on the stack.
func callThrough(L *lua.LState, fn lua.LValue, args ...lua.LValue) int {
	top := L.GetTop()
	L.Push(fn)
	for i := 0; i < len(args); i++ {
		L.Push(args[i])
	}
	L.Call(len(args), lua.MultRet)
	return L.GetTop() - top
}
