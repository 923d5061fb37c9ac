package engine

import (
	"fmt"
	"sync"
)

// Trace is a line buffered writer flushing complete lines to the sink.
// Lines longer than the buffer are flushed in buffer sized chunks.
type Trace struct {
	mu   sync.Mutex
	buf  []byte
	size int
	sink Sink
}

func newTrace(size int, sink Sink) *Trace {
	return &Trace{
		// one spare byte for the sink terminator
		buf:  make([]byte, 0, size+1),
		size: size,
		sink: sink,
	}
}

func (t *Trace) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < len(p); i++ {
		t.buf = append(t.buf, p[i])
		if p[i] == '\n' || len(t.buf) == t.size {
			t.flush()
		}
	}

	return len(p), nil
}

// Println writes the operands followed by a newline.
func (t *Trace) Println(a ...any) {
	_, _ = fmt.Fprintln(t, a...)
}

// Printf writes a formatted line, a newline is added when missing.
func (t *Trace) Printf(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		msg += "\n"
	}
	_, _ = t.Write([]byte(msg))
}

// Flush pushes a pending partial line to the sink.
func (t *Trace) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.flush()
}

func (t *Trace) flush() {
	if len(t.buf) == 0 {
		return
	}
	t.sink.OnTrace(t.buf)
	t.buf = t.buf[:0]
}
