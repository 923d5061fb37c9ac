package engine

import (
	"context"

	lua "github.com/yuin/gopher-lua"
)

// JobFunc is the job callback. It always runs on the dispatch goroutine.
type JobFunc func(jc *JobContext) error

// Job is a unit of work executed by the engine dispatch loop.
// After a successful RunJob/Submit the job belongs to the queue and must not be reused.
type Job struct {
	// Name is used in logs and spans only
	Name string
	// Run is the callback, nil callbacks are rejected on enqueue
	Run JobFunc

	// origin carries the span context of the producer, if any
	origin context.Context
}

func NewJob(name string, fn JobFunc) *Job {
	return &Job{
		Name: name,
		Run:  fn,
	}
}

// WithOrigin links the dispatch span of the job to the span context found in ctx.
func (j *Job) WithOrigin(ctx context.Context) *Job {
	j.origin = ctx
	return j
}

// JobContext is the execution context handed to a running job.
type JobContext struct {
	// Ctx carries the dispatch span of the job
	Ctx context.Context
	// L is the scripting environment, valid only for the duration of the callback
	L *lua.LState
	// MsgHandler is the scripting error channel used for protected calls
	MsgHandler *lua.LFunction

	srv *Server
}

// CallGlobal resolves the Lua global symbol and, if it is a function, calls it in protected mode
// with the given string arguments. Results are discarded. A missing or non-callable symbol is not an error.
// A failed call has already been reported through the message handler when the error is returned.
func (jc *JobContext) CallGlobal(symbol string, args ...string) error {
	L := jc.L
	fn := L.GetGlobal(symbol)
	if fn.Type() != lua.LTFunction {
		return nil
	}

	L.Push(fn)
	for i := 0; i < len(args); i++ {
		L.Push(lua.LString(args[i]))
	}

	return L.PCall(len(args), 0, jc.MsgHandler)
}

// Trace writes a line to the engine trace.
func (jc *JobContext) Trace(msg string) {
	if jc.srv == nil {
		return
	}
	jc.srv.trace.Println(msg)
}
