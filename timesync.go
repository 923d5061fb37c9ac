package xedge

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/roadrunner-server/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const syncTracerName string = "xedge/timesync"

var ErrSyncDone = errors.Str("time sync already ran")

// Handoff is called once after the clock has been committed.
type Handoff interface {
	Notify() error
}

// TimeSync queries the time server until one attempt succeeds, commits the clock and hands off once.
type TimeSync struct {
	src     TimeSource
	clock   Clock
	handoff Handoff
	log     *zap.Logger
	tracer  trace.Tracer

	host    string
	timeout time.Duration
	delay   time.Duration

	ran      atomic.Bool
	synced   atomic.Bool
	attempts atomic.Uint64
	failures atomic.Uint64
}

type SyncOption func(*TimeSync)

// WithRetryDelay sets the pause between failed attempts, default - no pause.
func WithRetryDelay(d time.Duration) SyncOption {
	return func(ts *TimeSync) { ts.delay = d }
}

func WithSyncTracerProvider(tp trace.TracerProvider) SyncOption {
	return func(ts *TimeSync) { ts.tracer = tp.Tracer(syncTracerName) }
}

func NewTimeSync(src TimeSource, clock Clock, handoff Handoff, host string, timeout time.Duration, log *zap.Logger, opts ...SyncOption) *TimeSync {
	ts := &TimeSync{
		src:     src,
		clock:   clock,
		handoff: handoff,
		log:     log,
		host:    host,
		timeout: timeout,
	}

	for _, opt := range opts {
		opt(ts)
	}

	if ts.tracer == nil {
		ts.tracer = otel.GetTracerProvider().Tracer(syncTracerName)
	}

	return ts
}

// Run blocks until the time is synchronized or the context is done. It runs at most once,
// the following calls return ErrSyncDone without querying.
func (ts *TimeSync) Run(ctx context.Context) error {
	const op = errors.Op("time_sync_run")
	if !ts.ran.CompareAndSwap(false, true) {
		return errors.E(op, ErrSyncDone)
	}

	bo := backoff.WithContext(backoff.NewConstantBackOff(ts.delay), ctx)

	st, err := backoff.RetryWithData[SNTPTime](func() (SNTPTime, error) {
		return ts.attempt(ctx)
	}, bo)
	if err != nil {
		// only the context ends the loop
		return errors.E(op, err)
	}

	// the protocol has second resolution
	err = ts.clock.Set(Timespec{Sec: st.Seconds, Nsec: 0})
	if err != nil {
		// the event still fires, scripts work with the local time
		ts.log.Error("failed to set the clock", zap.Int64("sec", st.Seconds), zap.Error(err))
	} else {
		ts.log.Info("time synchronized", zap.Time("time", time.Unix(st.Seconds, 0).UTC()))
	}
	ts.synced.Store(true)

	err = ts.handoff.Notify()
	if err != nil {
		return errors.E(op, err)
	}

	return nil
}

func (ts *TimeSync) attempt(ctx context.Context) (SNTPTime, error) {
	_, span := ts.tracer.Start(ctx, "time_sync_attempt", trace.WithAttributes(attribute.String("ntp.host", ts.host)))
	defer span.End()

	ts.attempts.Add(1)
	st, err := ts.src.Query(ctx, ts.host, ts.timeout)
	if err != nil {
		ts.failures.Add(1)
		code := failureCode(err)
		span.SetStatus(codes.Error, err.Error())
		ts.log.Error("time sync failed", zap.Int("code", code), zap.String("host", ts.host), zap.Error(err))
		return SNTPTime{}, err
	}

	return st, nil
}

func (ts *TimeSync) Synced() bool {
	return ts.synced.Load()
}

func (ts *TimeSync) Attempts() uint64 {
	return ts.attempts.Load()
}

func (ts *TimeSync) Failures() uint64 {
	return ts.failures.Load()
}
