package streamhttp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/mcp-gateway/pkg/backend"
	"github.com/stacklok/mcp-gateway/pkg/engine"
	"github.com/stacklok/mcp-gateway/pkg/eventbus"
	"github.com/stacklok/mcp-gateway/pkg/jsonrpc"
)

// TestStreamRoundTripInitializeAndToolCall drives the endpoint as a real
// client would: one chunked POST body carrying initialize,
// notifications/initialized, then a routed tools/call, asserting the
// initialize and tools/call responses arrive on the response body. Event
// notifications multiplexed onto the same body are skipped while waiting
// for the tools/call response.
func TestStreamRoundTripInitializeAndToolCall(t *testing.T) {
	reg := backend.NewRegistry(time.Second, false)
	_, err := reg.SpawnFromConfig(context.Background(), backend.BackendConfig{
		ID: "a", Name: "A", Transport: backend.TransportStdio,
		Command: "sh", Args: []string{"../engine/testdata/backend_a.sh"}, Active: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, h := range reg.List() {
			_ = h.Stop(context.Background())
		}
	})

	bus := eventbus.New()
	e := engine.New(reg, bus, engine.ServerInfo{Name: "gateway", Version: "test"})
	srv := httptest.NewServer(New(e))
	defer srv.Close()

	pr, pw := io.Pipe()
	req, err := http.NewRequest(http.MethodPost, srv.URL, pr)
	require.NoError(t, err)

	client := &http.Client{}
	respCh := make(chan *http.Response, 1)
	errCh := make(chan error, 1)
	go func() {
		resp, err := client.Do(req)
		if err != nil {
			errCh <- err
			return
		}
		respCh <- resp
	}()

	_, err = pw.Write([]byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}` + "\n"))
	require.NoError(t, err)

	var resp *http.Response
	select {
	case resp = <-respCh:
	case err := <-errCh:
		t.Fatalf("request failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for response headers")
	}
	defer resp.Body.Close()

	assert.Equal(t, engine.ProtocolVersion, resp.Header.Get("mcp-protocol-version"))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)

	require.True(t, scanner.Scan())
	var initResp jsonrpc.Response
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &initResp))
	assert.Nil(t, initResp.Error)

	_, err = pw.Write([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n"))
	require.NoError(t, err)

	_, err = pw.Write([]byte(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"A_echo","arguments":{}}}` + "\n"))
	require.NoError(t, err)

	var callResp jsonrpc.Response
	for {
		require.True(t, scanner.Scan())
		var probe struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &probe))
		if probe.Method != "event" {
			break
		}
	}
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &callResp))
	assert.Nil(t, callResp.Error)

	var content struct {
		Content []map[string]any `json:"content"`
		IsError bool             `json:"isError"`
	}
	require.NoError(t, json.Unmarshal(callResp.Result, &content))
	assert.False(t, content.IsError)

	require.NoError(t, pw.Close())
}

// TestStreamRejectsNonPost asserts the endpoint only accepts POST.
func TestStreamRejectsNonPost(t *testing.T) {
	bus := eventbus.New()
	reg := backend.NewRegistry(time.Second, false)
	e := engine.New(reg, bus, engine.ServerInfo{Name: "gateway", Version: "test"})
	srv := httptest.NewServer(New(e))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
