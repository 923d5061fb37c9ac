package xedge

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// idleMonitor reports liveness of the primary goroutine until the context is done.
// Uptime is counted from start, the process boot.
func idleMonitor(ctx context.Context, start time.Time, interval time.Duration, eng Engine, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("------> idle monitor was stopped <------")
			return
		case <-ticker.C:
			st := eng.Stats()
			log.Info("alive",
				zap.Duration("uptime", time.Since(start).Truncate(time.Second)),
				zap.Int("queued", st.Queued),
				zap.Uint64("jobs_ok", st.JobsOk),
				zap.Uint64("jobs_err", st.JobsErr),
			)
		}
	}
}
