package protocol

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/roadrunner-server/errors"
	"go.uber.org/zap"
)

type Type uint32

const (
	Event Type = iota
	Trace
)

// command envelope
type protocol struct {
	// message type, see Type
	T Type `json:"type"`
	// Payload
	Data json.RawMessage `json:"data"`
}

// Dispatcher executes decoded commands.
type Dispatcher interface {
	// Event delivers the named event with its arguments to the scripting environment.
	// ctx carries the trace context of the command producer.
	Event(ctx context.Context, name string, args []string) error
	// Trace writes the message to the engine trace.
	Trace(msg string)
}

type Handler struct {
	log *zap.Logger
	// envelope pools
	pPool sync.Pool
	ePool sync.Pool
}

func NewHandler(log *zap.Logger) *Handler {
	return &Handler{
		log: log,

		pPool: sync.Pool{
			New: func() any {
				return new(protocol)
			},
		},

		ePool: sync.Pool{
			New: func() any {
				return new(eventReq)
			},
		},
	}
}

func (h *Handler) Handle(ctx context.Context, body []byte, d Dispatcher) error {
	const op = errors.Op("protocol_handle_command")
	p := h.getProtocol()
	defer h.putProtocol(p)

	err := json.Unmarshal(body, p)
	if err != nil {
		return errors.E(op, err)
	}

	switch p.T {
	// likely case
	case Event:
		err = h.handleEvent(ctx, p.Data, d)
		if err != nil {
			return errors.E(op, err)
		}
		return nil
	case Trace:
		return h.handleTrace(p.Data, d)
	default:
		h.log.Warn("unknown command type", zap.Uint32("type", uint32(p.T)))
		return errors.E(op, errors.Errorf("unknown command type: %d", p.T))
	}
}

func (h *Handler) getProtocol() *protocol {
	return h.pPool.Get().(*protocol)
}

func (h *Handler) putProtocol(p *protocol) {
	p.T = 0
	p.Data = nil
	h.pPool.Put(p)
}

func (h *Handler) getEventReq() *eventReq {
	return h.ePool.Get().(*eventReq)
}

func (h *Handler) putEventReq(e *eventReq) {
	e.Name = ""
	e.Args = nil
	h.ePool.Put(e)
}
