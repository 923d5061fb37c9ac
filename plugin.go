package xedge

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/roadrunner-server/errors"
	"github.com/roadrunner-server/xedge/engine"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const (
	PluginName string = "xedge"
)

// Plugin is the process-wide context: it is constructed once in Init and owns the engine,
// the sinks, the clock and the time sync state shared by the boot and worker goroutines.
type Plugin struct {
	mu sync.Mutex

	cfg  *Config
	log  *zap.Logger
	sink *sink
	// halt replaces the process exit of the fatal sink
	halt func()
	// boot time, the uptime origin
	startedAt time.Time

	eng      Engine
	clock    Clock
	now      func() time.Time
	src      TimeSource
	notifier *Notifier
	sync     *TimeSync

	baseFs afero.Fs
	aux    engine.OpenAux

	registry *prometheus.Registry
	metrics  *statsExporter

	cancel  context.CancelFunc
	stopped chan struct{}
}

type PluginOption func(*Plugin)

// WithTimeSource replaces the SNTP client.
func WithTimeSource(src TimeSource) PluginOption {
	return func(p *Plugin) { p.src = src }
}

// WithClock replaces the clock selected by set_system_clock.
func WithClock(c Clock) PluginOption {
	return func(p *Plugin) { p.clock = c }
}

// WithBaseFs sets the filesystem the disk root is mounted from, default - the OS filesystem.
func WithBaseFs(fs afero.Fs) PluginOption {
	return func(p *Plugin) { p.baseFs = fs }
}

// WithOpenAux registers additional Lua bindings, called once during Init.
func WithOpenAux(aux engine.OpenAux) PluginOption {
	return func(p *Plugin) { p.aux = aux }
}

func (p *Plugin) Init(cfg Configurer, log Logger, opts ...PluginOption) error {
	const op = errors.Op("xedge_plugin_init")

	p.cfg = &Config{}
	if cfg.Has(PluginName) {
		err := cfg.UnmarshalKey(PluginName, p.cfg)
		if err != nil {
			return errors.E(op, err)
		}
	}

	err := p.cfg.InitDefaults()
	if err != nil {
		return errors.E(op, err)
	}

	p.startedAt = time.Now()

	for _, opt := range opts {
		opt(p)
	}

	if p.baseFs == nil {
		p.baseFs = afero.NewOsFs()
	}

	if p.src == nil {
		p.src = NTPSource{}
	}

	if p.clock == nil {
		if p.cfg.SetSystemClock {
			p.clock = SystemClock{}
		} else {
			p.clock = NewSoftClock()
		}
	}

	// scripts and log timestamps see the committed time
	p.now = nowFunc(p.clock)
	named := func(name string) *zap.Logger {
		return log.NamedLogger(name).WithOptions(zap.WithClock(wallClock(p.now)))
	}

	p.log = named(PluginName)
	p.sink = newSink(named("engine"))
	if p.halt != nil {
		p.sink.halt = p.halt
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	disk, err := mountDisk(p.baseFs, p.cfg.DiskRoot)
	if err != nil {
		p.log.Error("failed to mount the disk", zap.String("root", p.cfg.DiskRoot), zap.Error(err))
		file, line := engine.Caller()
		p.sink.OnFatal(engine.FatalMount, 0, file, line)
		return errors.E(op, err)
	}

	p.registry = prometheus.NewRegistry()

	srv, err := engine.New(p.cfg.Engine, p.sink, named("engine"),
		engine.WithFs(disk),
		engine.WithNow(p.now),
		engine.WithOpenAux(p.aux),
		engine.WithGatherer(p.registry),
	)
	if err != nil {
		return errors.E(op, err)
	}
	p.eng = srv

	p.notifier = NewNotifier(p.eng, p.sink, p.cfg.Engine.EventSymbol, named("notifier"))
	p.sync = NewTimeSync(p.src, p.clock, p.notifier, p.cfg.TimeServer, p.cfg.syncTimeout(), named("timesync"),
		WithRetryDelay(p.cfg.retryDelay()),
	)

	p.metrics = newStatsExporter(p.eng, p.sync)
	err = p.registry.Register(p.metrics)
	if err != nil {
		return errors.E(op, err)
	}

	return nil
}

// Run is the primary goroutine: it starts the server worker, synchronizes the time,
// hands off the sntp event and reports liveness until the context is done.
func (p *Plugin) Run(ctx context.Context) error {
	const op = errors.Op("xedge_plugin_run")

	p.log.Info("xedge boot",
		zap.String("board", p.cfg.Board),
		zap.Int("stack_size", p.cfg.StackSize),
		zap.Int("heap_size", p.cfg.HeapSize),
		zap.String("address", p.cfg.Engine.Address),
		zap.String("disk_root", p.cfg.DiskRoot),
	)

	done := serverWorker(ctx, p.eng, p.log.Named("worker"))

	err := p.sync.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			<-done
			return nil
		}
		return errors.E(op, err)
	}

	idleMonitor(ctx, p.startedAt, p.cfg.idleInterval(), p.eng, p.log.Named("idle"))
	<-done

	return nil
}

func (p *Plugin) Serve() chan error {
	errCh := make(chan error, 1)

	p.mu.Lock()
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.stopped = make(chan struct{})
	stopped := p.stopped
	p.mu.Unlock()

	go func() {
		defer close(stopped)
		err := p.Run(ctx)
		if err != nil {
			errCh <- err
		}
	}()

	return errCh
}

func (p *Plugin) Stop(ctx context.Context) error {
	p.mu.Lock()
	cancel, stopped := p.cancel, p.stopped
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Plugin) Name() string {
	return PluginName
}
