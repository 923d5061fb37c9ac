package engine

import (
	"time"

	"github.com/roadrunner-server/errors"
)

const (
	// name of the Lua global called for every event delivered to the scripting environment
	defaultEventSymbol string = "_XedgeEvent"
	// script executed once on the Lua state when the engine is constructed
	defaultInitScript string = "xedge.lua"
)

// Config defines the HTTP listener, the job queue and the scripting environment settings.
type Config struct {
	// Address is the HTTP listen address, default - :8080
	Address string `toml:"address"`
	// QueueSize limits the number of jobs waiting for the dispatch loop, default - 1024
	QueueSize int `toml:"queue_size"`
	// TraceBuffer is the size of the trace line buffer in bytes, default - 1024
	TraceBuffer int `toml:"trace_buffer"`
	// EventSymbol is the Lua global resolved by every event job, default - _XedgeEvent
	EventSymbol string `toml:"event_symbol"`
	// InitScript is loaded from the mounted filesystem root when present, default - xedge.lua
	InitScript string `toml:"init_script"`
	// ShutdownTimeout in seconds for the HTTP listener, default - 5
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

func (c *Config) InitDefaults() error {
	const op = errors.Op("engine_config_init_defaults")

	if c.Address == "" {
		c.Address = ":8080"
	}

	if c.QueueSize == 0 {
		c.QueueSize = 1024
	}

	if c.QueueSize < 0 {
		return errors.E(op, errors.Errorf("queue_size should be positive, got: %d", c.QueueSize))
	}

	if c.TraceBuffer <= 0 {
		c.TraceBuffer = 1024
	}

	if c.EventSymbol == "" {
		c.EventSymbol = defaultEventSymbol
	}

	if c.InitScript == "" {
		c.InitScript = defaultInitScript
	}

	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5
	}

	return nil
}

func (c *Config) shutdownTimeout() time.Duration {
	return time.Second * time.Duration(c.ShutdownTimeout)
}
