package engine

import (
	"runtime"
)

// FatalCode classifies unrecoverable engine faults.
type FatalCode uint32

const (
	FatalUnknown FatalCode = iota
	// the HTTP listener could not be opened or failed while serving
	FatalListen
	// a job callback panicked on the dispatch goroutine
	FatalJobPanic
	// the scripting environment could not be initialized
	FatalScript
	// the time synchronization hand-off could not be enqueued
	FatalHandoff
	// the filesystem root could not be mounted
	FatalMount
)

func (c FatalCode) String() string {
	switch c {
	case FatalListen:
		return "listen"
	case FatalJobPanic:
		return "job_panic"
	case FatalScript:
		return "script"
	case FatalHandoff:
		return "handoff"
	case FatalMount:
		return "mount"
	default:
		return "unknown"
	}
}

// Sink receives the engine fatal errors and trace output.
// It is registered once, at construction, before the engine runs.
type Sink interface {
	// OnFatal is called on an unrecoverable fault and is not expected to return.
	OnFatal(code1 FatalCode, code2 uint32, file string, line int)
	// OnTrace receives one trace line. The buffer may be modified in place,
	// its capacity is at least len(buf)+1.
	OnTrace(buf []byte)
}

// Caller returns the file and line of the function calling Caller's caller.
func Caller() (string, int) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "???", 0
	}
	return file, line
}

func (s *Server) fatal(code1 FatalCode, code2 uint32) {
	file, line := Caller()
	s.sink.OnFatal(code1, code2, file, line)
}
