package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusOK)
			return
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleHTTPRoundTrip(t *testing.T) {
	srv := newEchoServer(t)
	cfg := BackendConfig{ID: "h1", Name: "search", Transport: TransportHTTP, URL: srv.URL, Active: true}
	h, err := NewHandle(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, h.Start(ctx))
	assert.Equal(t, StatusRunning, h.Status())

	require.NoError(t, h.SendRaw(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)))

	select {
	case frame := <-h.Frames():
		assert.Contains(t, string(frame), `"method":"ping"`)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for response frame")
	}
}

func TestHandleHTTPHealthy(t *testing.T) {
	srv := newEchoServer(t)
	cfg := BackendConfig{ID: "h1", Name: "search", Transport: TransportHTTP, URL: srv.URL, Active: true}
	h, err := NewHandle(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, h.Start(ctx))
	assert.True(t, h.Healthy(ctx))
}

func TestHandleHTTPStartFailsOnUnreachableHost(t *testing.T) {
	cfg := BackendConfig{ID: "h2", Name: "unreachable", Transport: TransportHTTP, URL: "http://127.0.0.1:1", Active: true}
	h, err := NewHandle(cfg)
	require.NoError(t, err)

	err = h.Start(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StatusFailed, h.Status())
}
