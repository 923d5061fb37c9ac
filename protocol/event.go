package protocol

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/roadrunner-server/errors"
	"go.uber.org/zap"
)

func (h *Handler) handleEvent(ctx context.Context, data []byte, d Dispatcher) error {
	er := h.getEventReq()
	defer h.putEventReq(er)

	err := json.Unmarshal(data, er)
	if err != nil {
		return err
	}

	if er.Name == "" {
		return errors.Str("event name should not be empty")
	}

	// args slice is reset on put, hand over a private copy
	args := make([]string, len(er.Args))
	copy(args, er.Args)

	err = d.Event(ctx, er.Name, args)
	if err != nil {
		return err
	}

	h.log.Debug("event was queued", zap.String("event", er.Name), zap.Int("args", len(args)))

	return nil
}

func (h *Handler) handleTrace(data []byte, d Dispatcher) error {
	const op = errors.Op("protocol_handle_trace")
	tr := &traceReq{}

	err := json.Unmarshal(data, tr)
	if err != nil {
		return errors.E(op, err)
	}

	d.Trace(tr.Msg)
	return nil
}
