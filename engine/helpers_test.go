package engine

import (
	"sync"
)

type fatalCall struct {
	code1 FatalCode
	code2 uint32
	file  string
	line  int
}

// recordingSink keeps fatal calls and trace lines instead of halting and logging
type recordingSink struct {
	mu     sync.Mutex
	fatals []fatalCall
	traces []string
}

func (r *recordingSink) OnFatal(code1 FatalCode, code2 uint32, file string, line int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fatals = append(r.fatals, fatalCall{code1, code2, file, line})
}

func (r *recordingSink) OnTrace(buf []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(buf)
	if n > 0 && buf[n-1] == '\n' {
		n--
	}
	r.traces = append(r.traces, string(buf[:n]))
}

func (r *recordingSink) Traces() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.traces))
	copy(out, r.traces)
	return out
}

func (r *recordingSink) Fatals() []fatalCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]fatalCall, len(r.fatals))
	copy(out, r.fatals)
	return out
}
