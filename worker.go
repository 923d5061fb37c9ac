package xedge

import (
	"context"

	"go.uber.org/zap"
)

// serverWorker runs the engine event loop on its own goroutine. The loop is not expected
// to return while the process runs, a return is reported once and never retried.
func serverWorker(ctx context.Context, eng Engine, log *zap.Logger) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		err := eng.Run(ctx)
		if ctx.Err() != nil {
			log.Debug("------> server worker was stopped <------", zap.Error(err))
			return
		}

		log.Error("server worker returned, the engine event loop is gone", zap.Error(err))
	}()

	return done
}
