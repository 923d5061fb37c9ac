package xedge

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roadrunner-server/errors"
	"github.com/roadrunner-server/xedge/engine"
)

// fakeEngine keeps the enqueued jobs and refuses unlocked enqueues
type fakeEngine struct {
	mu     sync.Mutex
	jobs   []*engine.Job
	reject error

	runs   atomic.Int32
	runErr error
	block  bool
}

func (f *fakeEngine) Run(ctx context.Context) error {
	f.runs.Add(1)
	if f.block {
		<-ctx.Done()
		return nil
	}
	return f.runErr
}

func (f *fakeEngine) Mutex() sync.Locker {
	return &f.mu
}

func (f *fakeEngine) RunJob(j *engine.Job) error {
	if f.mu.TryLock() {
		f.mu.Unlock()
		return errors.Str("job enqueued without the engine lock")
	}
	if f.reject != nil {
		return f.reject
	}
	f.jobs = append(f.jobs, j)
	return nil
}

func (f *fakeEngine) Stats() engine.Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return engine.Stats{Queued: len(f.jobs)}
}

func (f *fakeEngine) Jobs() []*engine.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*engine.Job, len(f.jobs))
	copy(out, f.jobs)
	return out
}

type queryResult struct {
	st  SNTPTime
	err error
}

// scriptedSource replays the results, the last one repeats
type scriptedSource struct {
	mu      sync.Mutex
	results []queryResult
	calls   int
}

func (s *scriptedSource) Query(_ context.Context, _ string, _ time.Duration) (SNTPTime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	return s.results[i].st, s.results[i].err
}

func (s *scriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func failWith(code int) queryResult {
	return queryResult{err: &SyncError{Code: code, Err: errors.Errorf("query failed with %d", code)}}
}

func succeedWith(sec int64) queryResult {
	return queryResult{st: SNTPTime{Seconds: sec}}
}

type recordingClock struct {
	mu   sync.Mutex
	sets []Timespec
	err  error
}

func (c *recordingClock) Set(ts Timespec) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets = append(c.sets, ts)
	return c.err
}

func (c *recordingClock) Sets() []Timespec {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Timespec, len(c.sets))
	copy(out, c.sets)
	return out
}

type fatalCall struct {
	code1 engine.FatalCode
	code2 uint32
}

type fatalRecorder struct {
	mu    sync.Mutex
	calls []fatalCall
}

func (r *fatalRecorder) OnFatal(code1 engine.FatalCode, code2 uint32, _ string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fatalCall{code1, code2})
}

func (r *fatalRecorder) OnTrace([]byte) {}

func (r *fatalRecorder) Calls() []fatalCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]fatalCall, len(r.calls))
	copy(out, r.calls)
	return out
}

type countingHandoff struct {
	n atomic.Int32
}

func (h *countingHandoff) Notify() error {
	h.n.Add(1)
	return nil
}

// orderedHandoff checks that the clock was committed before it is called
type orderedHandoff struct {
	clock *recordingClock
	seen  []int
}

func (h *orderedHandoff) Notify() error {
	h.seen = append(h.seen, len(h.clock.Sets()))
	return nil
}

// emptyQueueClock checks that no job was enqueued when the time is set
type emptyQueueClock struct {
	recordingClock
	eng    *fakeEngine
	queued []int
}

func (c *emptyQueueClock) Set(ts Timespec) error {
	c.queued = append(c.queued, len(c.eng.Jobs()))
	return c.recordingClock.Set(ts)
}
