// Package protocol decodes the command envelopes accepted by the xedge engine
// on POST /rtl/command.
//
// A command is a JSON envelope with a numeric type and a type specific payload.
// Event commands are delivered to the Lua event handler on the engine dispatch
// goroutine, Trace commands are written to the engine trace. Envelopes and
// payloads are pooled, the handler is safe for concurrent use.
package protocol
