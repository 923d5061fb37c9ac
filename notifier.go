package xedge

import (
	"sync/atomic"

	"github.com/roadrunner-server/errors"
	"github.com/roadrunner-server/xedge/engine"
	"go.uber.org/zap"
)

const (
	// argument passed to the event symbol once the time is synchronized
	sntpEvent string = "sntp"
)

var ErrNotified = errors.Str("sntp notification was already handed off")

// Notifier hands the one-shot sntp event over to the engine dispatch goroutine.
type Notifier struct {
	eng    Engine
	sink   engine.Sink
	log    *zap.Logger
	symbol string

	// consumed token, the hand-off happens at most once
	consumed atomic.Bool
}

func NewNotifier(eng Engine, sink engine.Sink, symbol string, log *zap.Logger) *Notifier {
	return &Notifier{
		eng:    eng,
		sink:   sink,
		log:    log,
		symbol: symbol,
	}
}

// Notify enqueues the sntp event job under the engine mutex.
// The job runs later on the engine dispatch goroutine, never on the caller's.
func (n *Notifier) Notify() error {
	const op = errors.Op("notifier_notify")
	if !n.consumed.CompareAndSwap(false, true) {
		return errors.E(op, ErrNotified)
	}

	symbol := n.symbol
	jb := engine.NewJob(sntpEvent, func(jc *engine.JobContext) error {
		return jc.CallGlobal(symbol, sntpEvent)
	})

	err := n.enqueue(jb)
	if err != nil {
		n.log.Error("sntp event was not queued", zap.Error(err))
		// the scripts rely on the sntp event, losing it is not recoverable
		file, line := engine.Caller()
		n.sink.OnFatal(engine.FatalHandoff, 0, file, line)
		return errors.E(op, err)
	}

	n.log.Debug("sntp event was queued")
	return nil
}

func (n *Notifier) enqueue(jb *engine.Job) error {
	mu := n.eng.Mutex()
	mu.Lock()
	defer mu.Unlock()

	return n.eng.RunJob(jb)
}
