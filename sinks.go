package xedge

import (
	"fmt"
	"io"
	"os"

	"github.com/roadrunner-server/xedge/engine"
	"go.uber.org/zap"
)

// exit code used on a fatal engine error, same as abort()
const fatalExitCode int = 134

// sink receives the engine fatal errors and trace lines.
type sink struct {
	log *zap.Logger
	// raw console channel, independent of the logger
	console io.Writer
	halt    func()
}

func newSink(log *zap.Logger) *sink {
	return &sink{
		log:     log,
		console: os.Stderr,
		halt: func() {
			os.Exit(fatalExitCode)
		},
	}
}

// OnFatal reports the fault on both channels and halts the process. It does not return.
func (s *sink) OnFatal(code1 engine.FatalCode, code2 uint32, file string, line int) {
	s.log.Error("fatal error",
		zap.Uint32("ecode1", uint32(code1)),
		zap.Stringer("kind", code1),
		zap.Uint32("ecode2", code2),
		zap.String("file", file),
		zap.Int("line", line),
	)
	_ = s.log.Sync()

	_, _ = fmt.Fprintf(s.console, "FATAL: ecode1=%d ecode2=%d file=%q line=%d\n", uint32(code1), code2, file, line)

	s.halt()
}

// OnTrace terminates the line in place and logs the text before the terminator.
func (s *sink) OnTrace(buf []byte) {
	n := len(buf)
	if n <= 0 {
		return
	}

	if buf[n-1] == '\n' {
		n--
		buf[n] = 0
	} else if cap(buf) > n {
		buf[:n+1][n] = 0
	}

	s.log.Info(string(buf[:n]))
}
