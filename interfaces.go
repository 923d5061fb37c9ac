package xedge

import (
	"context"
	"sync"
	"time"

	"github.com/roadrunner-server/xedge/engine"
	"go.uber.org/zap"
)

type Logger interface {
	NamedLogger(name string) *zap.Logger
}

type Configurer interface {
	// UnmarshalKey takes a single key and unmarshal it into a Struct.
	UnmarshalKey(name string, out any) error
	// Has checks if config section exists.
	Has(name string) bool
}

// Engine is the server engine as seen by the boot core.
type Engine interface {
	// Run blocks in the engine event loop until the context is done.
	Run(ctx context.Context) error
	// Mutex returns the lock guarding the engine job queue.
	Mutex() sync.Locker
	// RunJob enqueues the job, the caller must hold Mutex().
	RunJob(j *engine.Job) error
	// Stats returns the engine counters.
	Stats() engine.Stats
}

// TimeSource performs a single network time query.
type TimeSource interface {
	Query(ctx context.Context, host string, timeout time.Duration) (SNTPTime, error)
}

// Clock is the process-wide real-time clock.
type Clock interface {
	Set(ts Timespec) error
}
