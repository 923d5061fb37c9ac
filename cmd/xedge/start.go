package main

import (
	"context"
	"time"

	"github.com/roadrunner-server/errors"
	"github.com/roadrunner-server/xedge"
	"github.com/roadrunner-server/xedge/internal/config"
	"github.com/roadrunner-server/xedge/internal/logging"
	"go.uber.org/zap"
)

const stopTimeout = 10 * time.Second

// StartCmd is 'xedge start'.
type StartCmd struct{}

// Run boots the plugin and blocks until SIGINT/SIGTERM or a boot error.
func (c *StartCmd) Run(ctx context.Context) error {
	const op = errors.Op("xedge_start")

	// the default file is optional, an explicit one must exist
	path, optional := RootCmd.Config, false
	if path == "" {
		path, optional = defaultConfigPath(), true
	}

	cfg, err := config.NewFromFile(path, optional)
	if err != nil {
		return errors.E(op, err)
	}

	log, err := logging.New(logging.Config{Level: RootCmd.LogLevel})
	if err != nil {
		return errors.E(op, err)
	}
	defer func() { _ = log.Sync() }()

	mlog := log.NamedLogger("main")
	mlog.Debug("xedge is starting", zap.String("version", versionString()), zap.String("config", path))

	p := &xedge.Plugin{}
	err = p.Init(cfg, log)
	if err != nil {
		return errors.E(op, err)
	}

	for _, key := range cfg.Undecoded() {
		mlog.Warn("unknown configuration key", zap.String("key", key))
	}

	errCh := p.Serve()

	select {
	case <-ctx.Done():
		mlog.Info("shutting down")
	case err = <-errCh:
		mlog.Error("xedge stopped with an error", zap.Error(err))
	}

	sctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	errS := p.Stop(sctx)
	if errS != nil {
		mlog.Error("stop", zap.Error(errS))
	}

	if err != nil {
		return errors.E(op, err)
	}

	return nil
}
