package engine

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/roadrunner-server/errors"
	"github.com/roadrunner-server/xedge/protocol"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

type health struct {
	Status  string `json:"status"`
	Time    string `json:"time"`
	Uptime  string `json:"uptime"`
	Queued  int    `json:"queued"`
	JobsOk  uint64 `json:"jobs_ok"`
	JobsErr uint64 `json:"jobs_err"`
}

func (s *Server) newHTTP() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "xedge",
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ReadTimeout:           time.Minute,
	})

	app.Get("/rtl/health", s.handleHealth)

	if s.gatherer != nil {
		app.Get("/rtl/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	cmd := protocol.NewHandler(s.log.Named("protocol"))
	app.Post("/rtl/command", func(c *fiber.Ctx) error {
		// the command may carry the trace context of its producer
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), requestCarrier(c))
		err := cmd.Handle(ctx, c.Body(), s)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	if s.fs != nil {
		app.Use("/", filesystem.New(filesystem.Config{
			Root:  afero.NewHttpFs(s.fs).Dir("/"),
			Index: "index.html",
		}))
	}

	return app
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	st := s.Stats()
	uptime := time.Duration(0)
	if s.running.Load() && !s.startedAt.IsZero() {
		uptime = time.Since(s.startedAt).Truncate(time.Second)
	}

	return c.JSON(&health{
		Status:  "ok",
		Time:    s.now().UTC().Format(time.RFC3339),
		Uptime:  uptime.String(),
		Queued:  st.Queued,
		JobsOk:  st.JobsOk,
		JobsErr: st.JobsErr,
	})
}

// Event implements protocol.Dispatcher, the event is delivered on the dispatch goroutine.
// The dispatch span is linked to the span context found in ctx.
func (s *Server) Event(ctx context.Context, name string, args []string) error {
	const op = errors.Op("engine_event")
	symbol := s.cfg.EventSymbol

	err := s.Submit(NewJob("event:"+name, func(jc *JobContext) error {
		return jc.CallGlobal(symbol, append([]string{name}, args...)...)
	}).WithOrigin(ctx))
	if err != nil {
		s.log.Warn("event was not queued", zap.String("event", name), zap.Error(err))
		return errors.E(op, err)
	}

	return nil
}

// Trace implements protocol.Dispatcher.
func (s *Server) Trace(msg string) {
	s.trace.Println(msg)
}

// requestCarrier copies the request headers, fiber strings are only valid during the handler
func requestCarrier(c *fiber.Ctx) propagation.HeaderCarrier {
	hdr := c.GetReqHeaders()
	carrier := make(propagation.HeaderCarrier, len(hdr))
	for k, v := range hdr {
		vals := make([]string, len(v))
		for i := 0; i < len(v); i++ {
			vals[i] = strings.Clone(v[i])
		}
		carrier[strings.Clone(k)] = vals
	}
	return carrier
}
