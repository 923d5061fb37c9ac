// Package engine implements the xedge application server: an HTTP listener
// (fiber), a Lua scripting environment (gopher-lua) and a bounded job queue
// drained by a single dispatch goroutine.
//
// The Lua state is owned by the dispatch goroutine. Code running anywhere else
// never touches it: it builds a [Job] and enqueues it while holding the
// dispatch mutex returned by [Server.Mutex], or calls [Server.Submit] which
// does the locking. The job callback then runs on the dispatch goroutine with
// a [JobContext] carrying the Lua state and the scripting error channel.
//
// Fatal faults and trace output are reported to the [Sink] registered in [New].
//
// Example usage:
//
//	srv, err := engine.New(&engine.Config{Address: ":8080"}, sink, log,
//	    engine.WithFs(fs),
//	)
//	if err != nil {
//	    return err
//	}
//
//	go srv.Run(ctx)
//
//	mu := srv.Mutex()
//	mu.Lock()
//	err = srv.RunJob(engine.NewJob("hello", func(jc *engine.JobContext) error {
//	    return jc.CallGlobal("_XedgeEvent", "hello")
//	}))
//	mu.Unlock()
package engine
