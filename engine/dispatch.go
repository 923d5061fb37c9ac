package engine

import (
	"context"
	"time"

	"github.com/roadrunner-server/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// dispatch drains the queue on the calling goroutine until the context is done.
// It is the only consumer of the queue and the only user of the Lua state.
func (s *Server) dispatch(ctx context.Context) {
	tracer := s.tp.Tracer(tracerName)

	for {
		s.mu.Lock()
		jb := s.queue.pop()
		s.mu.Unlock()

		if jb == nil {
			select {
			case <-ctx.Done():
				s.log.Debug("------> dispatch loop was stopped <------")
				return
			case <-s.queue.signal:
				continue
			}
		}

		start := time.Now()
		jctx, span := tracer.Start(jobParent(ctx, jb), "engine_job", withJobName(jb.Name))

		s.log.Debug("job processing was started", zap.String("job", jb.Name), zap.Time("start", s.now()))

		err := s.exec(jctx, jb)
		if err != nil {
			s.jobsErr.Add(1)
			span.SetStatus(codes.Error, err.Error())
			// Lua errors were already reported by the message handler
			s.log.Debug("job processed with errors", zap.String("job", jb.Name), zap.Error(err), zap.Duration("elapsed", time.Since(start)))
			span.End()
			continue
		}

		s.jobsOk.Add(1)
		s.log.Debug("job was processed successfully", zap.String("job", jb.Name), zap.Duration("elapsed", time.Since(start)))
		span.End()
	}
}

// exec runs one job, a panic is an unrecoverable fault
func (s *Server) exec(ctx context.Context, jb *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("job panic", zap.String("job", jb.Name), zap.Any("panic", r))
			s.fatal(FatalJobPanic, 0)
			err = errors.Errorf("job %s panicked: %v", jb.Name, r)
		}
	}()

	jc := &JobContext{
		Ctx:        ctx,
		L:          s.L,
		MsgHandler: s.msgh,
		srv:        s,
	}

	return jb.Run(jc)
}

// jobParent attaches the producer span context of the job to the dispatch context
func jobParent(ctx context.Context, jb *Job) context.Context {
	if jb.origin == nil {
		return ctx
	}

	sc := trace.SpanContextFromContext(jb.origin)
	if !sc.IsValid() {
		return ctx
	}

	return trace.ContextWithRemoteSpanContext(ctx, sc)
}

func withJobName(name string) trace.SpanStartOption {
	return trace.WithAttributes(attribute.String("job.name", name))
}
