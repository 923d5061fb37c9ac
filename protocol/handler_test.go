package protocol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	events [][]string
	traces []string
}

func (r *recorder) Event(_ context.Context, name string, args []string) error {
	r.events = append(r.events, append([]string{name}, args...))
	return nil
}

func (r *recorder) Trace(msg string) {
	r.traces = append(r.traces, msg)
}

func TestHandleEvent(t *testing.T) {
	h := NewHandler(zap.NewNop())
	rec := &recorder{}

	require.NoError(t, h.Handle(context.Background(), []byte(`{"type":0,"data":{"name":"button","args":["on","2"]}}`), rec))
	// pooled envelope must not leak the previous args
	require.NoError(t, h.Handle(context.Background(), []byte(`{"type":0,"data":{"name":"reset"}}`), rec))

	require.Len(t, rec.events, 2)
	assert.Equal(t, []string{"button", "on", "2"}, rec.events[0])
	assert.Equal(t, []string{"reset"}, rec.events[1])
	assert.Empty(t, rec.traces)
}

func TestHandleTrace(t *testing.T) {
	h := NewHandler(zap.NewNop())
	rec := &recorder{}

	require.NoError(t, h.Handle(context.Background(), []byte(`{"type":1,"data":{"message":"hello"}}`), rec))
	assert.Equal(t, []string{"hello"}, rec.traces)
}

func TestHandleErrors(t *testing.T) {
	h := NewHandler(zap.NewNop())

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"type":`},
		{name: "unknown type", body: `{"type":42,"data":{}}`},
		{name: "empty event name", body: `{"type":0,"data":{"args":["x"]}}`},
		{name: "bad event payload", body: `{"type":0,"data":"oops"}`},
	}

	for i := range tests {
		t.Run(tests[i].name, func(t *testing.T) {
			rec := &recorder{}
			require.Error(t, h.Handle(context.Background(), []byte(tests[i].body), rec))
			assert.Empty(t, rec.events)
		})
	}
}
