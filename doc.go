// Package xedge boots the embedded application server and runs the one-time,
// time-sync gated startup event.
//
// Two goroutines cooperate. The server worker runs the engine event loop
// (HTTP listener and job dispatch). The primary goroutine queries an SNTP
// server until one attempt succeeds, commits the clock and hands a single
// "sntp" event job over to the engine under the engine's own queue mutex.
// The job runs on the dispatch goroutine and calls the Lua global
// _XedgeEvent("sntp") when it is defined.
//
// Key components:
//   - Plugin: the process-wide context, Init/Serve/Stop lifecycle
//   - TimeSync: the retry loop, commits the clock once
//   - Notifier: the one-shot cross-goroutine hand-off
//   - sink: fatal errors (log, console, halt) and engine trace lines
package xedge
