package xedge

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/roadrunner-server/errors"
	"github.com/roadrunner-server/xedge/engine"
)

// Config defines the boot core settings and the engine section.
type Config struct {
	// Board identifier, reported at boot only
	Board string `toml:"board"`
	// StackSize of the server worker in bytes, reported at boot only
	StackSize int `toml:"stack_size"`
	// HeapSize in bytes, reported at boot only
	HeapSize int `toml:"heap_size"`

	// TimeServer is the SNTP server name, default - pool.ntp.org
	TimeServer string `toml:"time_server"`
	// SyncTimeout in milliseconds is the per-attempt query limit, default - 5000
	SyncTimeout int `toml:"sync_timeout"`
	// RetryDelay in milliseconds between failed attempts, default - 0 (retry immediately)
	RetryDelay int `toml:"retry_delay"`
	// SetSystemClock commits the synchronized time to the OS clock instead of the process clock
	SetSystemClock bool `toml:"set_system_clock"`
	// IdleInterval in seconds between liveness reports, default - 30
	IdleInterval int `toml:"idle_interval"`

	// DiskRoot is the filesystem root served by the engine, default - $XDG_DATA_HOME/xedge
	// "-" disables the disk
	DiskRoot string `toml:"disk_root"`

	Engine *engine.Config `toml:"engine"`
}

func (c *Config) InitDefaults() error {
	const op = errors.Op("xedge_config_init_defaults")

	if c.Board == "" {
		c.Board = "generic"
	}

	if c.TimeServer == "" {
		c.TimeServer = "pool.ntp.org"
	}

	if c.SyncTimeout == 0 {
		c.SyncTimeout = 5000
	}

	if c.SyncTimeout < 0 || c.RetryDelay < 0 {
		return errors.E(op, errors.Errorf("sync_timeout and retry_delay should not be negative, got: %d, %d", c.SyncTimeout, c.RetryDelay))
	}

	if c.IdleInterval <= 0 {
		c.IdleInterval = 30
	}

	switch c.DiskRoot {
	case "":
		c.DiskRoot = filepath.Join(xdg.DataHome, PluginName)
	case noDisk:
		c.DiskRoot = ""
	}

	if c.Engine == nil {
		c.Engine = &engine.Config{}
	}

	return c.Engine.InitDefaults()
}

func (c *Config) syncTimeout() time.Duration {
	return time.Millisecond * time.Duration(c.SyncTimeout)
}

func (c *Config) retryDelay() time.Duration {
	return time.Millisecond * time.Duration(c.RetryDelay)
}

func (c *Config) idleInterval() time.Duration {
	return time.Second * time.Duration(c.IdleInterval)
}
