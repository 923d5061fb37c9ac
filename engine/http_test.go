package engine

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, "")
	require.NoError(t, srv.Submit(NewJob("pending", func(*JobContext) error { return nil })))

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/rtl/health", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	h := &health{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 1, h.Queued)
}

func TestCommandEvent(t *testing.T) {
	srv, _, _ := newTestServer(t, "")

	body := `{"type":0,"data":{"name":"button","args":["1","down"]}}`
	req := httptest.NewRequest(http.MethodPost, "/rtl/command", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, 1, srv.Stats().Queued)
}

func TestCommandTrace(t *testing.T) {
	srv, sink, _ := newTestServer(t, "")

	body := `{"type":1,"data":{"message":"from the wire"}}`
	resp, err := srv.App().Test(httptest.NewRequest(http.MethodPost, "/rtl/command", strings.NewReader(body)), -1)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, []string{"from the wire"}, sink.Traces())
}

func TestCommandBadRequest(t *testing.T) {
	srv, _, _ := newTestServer(t, "")

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{`},
		{"unknown type", `{"type":42,"data":{}}`},
		{"empty event name", `{"type":0,"data":{"name":""}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/rtl/command", strings.NewReader(tt.body))
			resp, err := srv.App().Test(req, -1)
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	assert.Equal(t, 0, srv.Stats().Queued)
}

func TestStaticFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/hello.txt", []byte("hello from disk"), 0o644))

	srv, err := New(&Config{}, &recordingSink{}, zap.NewNop(), WithFs(fs))
	require.NoError(t, err)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/hello.txt", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello from disk", string(data))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "xedge_test_total", Help: "test counter"})
	reg.MustRegister(c)
	c.Inc()

	srv, err := New(&Config{}, &recordingSink{}, zap.NewNop(), WithGatherer(reg))
	require.NoError(t, err)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/rtl/metrics", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "xedge_test_total 1")
}

func TestNoMetricsWithoutGatherer(t *testing.T) {
	srv, err := New(&Config{}, &recordingSink{}, zap.NewNop())
	require.NoError(t, err)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/rtl/metrics", nil), -1)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCommandCarriesTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	srv, _, _ := newTestServer(t, "")

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	req := httptest.NewRequest(http.MethodPost, "/rtl/command", strings.NewReader(`{"type":0,"data":{"name":"button"}}`))
	req.Header.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	srv.mu.Lock()
	jb := srv.queue.pop()
	srv.mu.Unlock()
	require.NotNil(t, jb)

	sc := trace.SpanContextFromContext(jobParent(context.Background(), jb))
	require.True(t, sc.IsValid())
	assert.Equal(t, traceID, sc.TraceID().String())
	assert.True(t, sc.IsRemote())
}

func TestHealthReportsEngineClock(t *testing.T) {
	srv, _, _ := newTestServer(t, "", WithNow(func() time.Time { return time.Unix(1700000000, 0) }))

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/rtl/health", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	h := &health{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(h))
	assert.Equal(t, "2023-11-14T22:13:20Z", h.Time)
}
