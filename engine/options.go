package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Server.
type Option func(*Server)

// WithFs sets the filesystem used for static content and the init script.
// Without it the engine serves no files.
func WithFs(fs afero.Fs) Option {
	return func(s *Server) { s.fs = fs }
}

// WithOpenAux sets the user extension hook called with the Lua state during New.
func WithOpenAux(aux OpenAux) Option {
	return func(s *Server) { s.aux = aux }
}

// WithGatherer exposes the gatherer on GET /rtl/metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithTracerProvider sets the otel provider for dispatch spans, default - the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) { s.tp = tp }
}

// WithNow sets the wall clock used by Lua os.time/os.date and the health endpoint, default - time.Now.
func WithNow(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}
