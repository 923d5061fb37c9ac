package xedge

import (
	"sync"
	"time"
)

// Timespec is the real-time clock representation, second resolution with a nanosecond part.
type Timespec struct {
	Sec  int64
	Nsec int64
}

func (ts Timespec) Time() time.Time {
	return time.Unix(ts.Sec, ts.Nsec)
}

// SoftClock keeps the synchronized wall-clock time as an offset from the monotonic
// process clock. It is used when the process is not allowed to set the OS clock.
type SoftClock struct {
	mu     sync.RWMutex
	offset time.Duration
	set    bool
}

func NewSoftClock() *SoftClock {
	return &SoftClock{}
}

func (c *SoftClock) Set(ts Timespec) error {
	c.mu.Lock()
	c.offset = time.Until(ts.Time())
	c.set = true
	c.mu.Unlock()
	return nil
}

// Now returns the corrected time, or the local time until Set was called.
func (c *SoftClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Now().Add(c.offset)
}

func (c *SoftClock) Synced() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.set
}

// wallClock adapts a time source to zapcore.Clock so log timestamps follow the synchronized time.
type wallClock func() time.Time

func (c wallClock) Now() time.Time {
	return c()
}

func (c wallClock) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// nowFunc returns the reader of the clock, the host clock for clocks without one.
func nowFunc(c Clock) func() time.Time {
	if nc, ok := c.(interface{ Now() time.Time }); ok {
		return nc.Now
	}
	return time.Now
}
