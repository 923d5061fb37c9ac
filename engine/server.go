package engine

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/roadrunner-server/errors"
	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const tracerName string = "xedge/engine"

var (
	ErrStopped   = errors.Str("engine is stopped")
	ErrQueueFull = errors.Str("job queue is full")
	ErrNilJob    = errors.Str("job or job callback is nil")
)

// Stats is a point in time copy of the engine counters.
type Stats struct {
	Queued  int
	JobsOk  uint64
	JobsErr uint64
}

// Server is the application server: an HTTP listener, a Lua scripting environment
// and a job queue drained by a single dispatch goroutine.
type Server struct {
	// mu is the dispatch mutex, it guards the queue and the stopped flag
	mu      sync.Mutex
	queue   *jobQueue
	stopped bool

	cfg  *Config
	log  *zap.Logger
	sink Sink

	trace *Trace
	L     *lua.LState
	msgh  *lua.LFunction
	aux   OpenAux
	fs    afero.Fs

	app      *fiber.App
	gatherer prometheus.Gatherer
	tp       trace.TracerProvider
	// wall clock seen by scripts and the health endpoint
	now func() time.Time

	startedAt time.Time
	running   atomic.Bool
	jobsOk    atomic.Uint64
	jobsErr   atomic.Uint64
}

// New constructs the engine completely: the queue, the scripting environment
// (including the user extension hook and the init script) and the HTTP routes.
// Jobs may be enqueued as soon as New returns, they are dispatched once Run starts.
func New(cfg *Config, sink Sink, log *zap.Logger, opts ...Option) (*Server, error) {
	const op = errors.Op("engine_new")
	if cfg == nil {
		cfg = &Config{}
	}

	err := cfg.InitDefaults()
	if err != nil {
		return nil, errors.E(op, err)
	}

	if sink == nil {
		return nil, errors.E(op, errors.Str("engine sink should not be nil"))
	}

	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:   cfg,
		log:   log,
		sink:  sink,
		queue: newJobQueue(cfg.QueueSize),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.tp == nil {
		s.tp = otel.GetTracerProvider()
	}

	if s.now == nil {
		s.now = time.Now
	}

	s.trace = newTrace(cfg.TraceBuffer, sink)

	err = s.newScriptEnv(s.aux)
	if err != nil {
		return nil, errors.E(op, err)
	}

	err = s.loadInitScript()
	if err != nil {
		// a broken user script must not take the server down
		s.trace.Printf("init script %s: %v", cfg.InitScript, err)
		s.log.Warn("init script failed", zap.String("script", cfg.InitScript), zap.Error(err))
	}

	s.app = s.newHTTP()

	return s, nil
}

// Mutex returns the dispatch mutex guarding the job queue.
// It must be held for RunJob and must never be held across blocking calls.
func (s *Server) Mutex() sync.Locker {
	return &s.mu
}

// RunJob enqueues the job. The caller must hold Mutex(), the queue is not
// synchronized otherwise. On success the job is owned by the queue.
func (s *Server) RunJob(j *Job) error {
	const op = errors.Op("engine_run_job")
	if j == nil || j.Run == nil {
		return errors.E(op, ErrNilJob)
	}

	if s.stopped {
		return errors.E(op, ErrStopped)
	}

	if !s.queue.push(j) {
		return errors.E(op, ErrQueueFull)
	}

	return nil
}

// Submit acquires the dispatch mutex, enqueues the job and releases the mutex.
func (s *Server) Submit(j *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.RunJob(j)
}

// TraceWriter returns the engine trace writer.
func (s *Server) TraceWriter() *Trace {
	return s.trace
}

// App returns the HTTP application.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Stats() Stats {
	s.mu.Lock()
	queued := s.queue.len()
	s.mu.Unlock()

	return Stats{
		Queued:  queued,
		JobsOk:  s.jobsOk.Load(),
		JobsErr: s.jobsErr.Load(),
	}
}

// Run serves HTTP and dispatches jobs until the context is cancelled.
// Run may be called only once.
func (s *Server) Run(ctx context.Context) error {
	const op = errors.Op("engine_run")
	if !s.running.CompareAndSwap(false, true) {
		return errors.E(op, errors.Str("engine is already running"))
	}

	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		s.fatal(FatalListen, 0)
		return errors.E(op, err)
	}

	s.startedAt = time.Now()
	s.log.Info("server listening", zap.String("address", ln.Addr().String()))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		errL := s.app.Listener(ln)
		if errL != nil && gctx.Err() == nil {
			s.fatal(FatalListen, 1)
			return errors.E(op, errL)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		errS := s.app.ShutdownWithTimeout(s.cfg.shutdownTimeout())
		if errS != nil {
			s.log.Error("http shutdown", zap.Error(errS))
		}
		// the listener might not be served yet
		_ = ln.Close()
		return nil
	})

	g.Go(func() error {
		s.dispatch(gctx)
		return nil
	})

	err = g.Wait()
	s.stop()

	return err
}

func (s *Server) stop() {
	s.mu.Lock()
	s.stopped = true
	dropped := s.queue.len()
	for s.queue.pop() != nil {
	}
	s.mu.Unlock()

	if dropped > 0 {
		s.log.Warn("engine stopped with pending jobs", zap.Int("dropped", dropped))
	}

	s.trace.Flush()
	s.L.Close()
}
