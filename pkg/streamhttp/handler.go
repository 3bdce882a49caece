// Package streamhttp implements the client-facing streaming endpoint: one
// authenticated, bidirectional, chunked-transfer-encoded HTTP connection per
// session, multiplexing JSON-RPC responses and event-bus notifications onto
// the same outbound body.
package streamhttp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/mcp-gateway/pkg/engine"
	"github.com/stacklok/mcp-gateway/pkg/eventbus"
	"github.com/stacklok/mcp-gateway/pkg/jsonrpc"
	"github.com/stacklok/mcp-gateway/pkg/logger"
)

// ProtocolVersion is echoed on the mandatory mcp-protocol-version header of
// every stream this handler opens.
const ProtocolVersion = engine.ProtocolVersion

// keepAliveInterval is how often an idle chunk is emitted to keep the
// connection alive through intermediate proxies.
const keepAliveInterval = 30 * time.Second

// maxLineSize bounds a single inbound JSON-RPC frame.
const maxLineSize = 8 * 1024 * 1024

// Handler serves POST /api/v1/mcp/stream: an authenticated bidirectional
// chunked connection carrying one MCP session.
type Handler struct {
	Engine *engine.Engine
}

// New builds a Handler over e.
func New(e *engine.Engine) *Handler {
	return &Handler{Engine: e}
}

// syncWriter serializes writes from the two goroutines that share one
// outbound connection (the client message loop and the event pump) and
// flushes after every line so the client sees it without delay.
type syncWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSyncWriter(w http.ResponseWriter) (*syncWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	return &syncWriter{w: w, flusher: flusher}, true
}

func (s *syncWriter) writeLine(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("\n")); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// ServeHTTP implements http.Handler. The caller is expected to have already
// run the bearer-token auth gate (pkg/auth.Middleware) in front of this
// handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sw, ok := newSyncWriter(w)
	if !ok {
		http.Error(w, "streaming not supported by this response writer", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("mcp-protocol-version", ProtocolVersion)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	sessionID := uuid.NewString()
	sess := h.Engine.OpenSession(sessionID, eventbus.MatchAll)
	defer h.Engine.CloseSession(sessionID)

	ctx := r.Context()

	inbound := make(chan []byte)
	readErr := make(chan error, 1)
	go readLines(r.Body, inbound, readErr)

	go pumpEvents(ctx, sess, sw)

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sw.writeLine(nil); err != nil {
				return
			}
		case err := <-readErr:
			if err != nil {
				logger.Warnf("stream %s: read error: %v", sessionID, err)
			}
			return
		case line, ok := <-inbound:
			if !ok {
				return
			}
			resp, err := h.Engine.HandleMessage(ctx, sess, line)
			if err != nil {
				logger.Warnf("stream %s: handle message: %v", sessionID, err)
				continue
			}
			if resp == nil {
				// Notifications never produce a response.
				continue
			}
			data, err := json.Marshal(resp)
			if err != nil {
				logger.Errorf("stream %s: marshal response: %v", sessionID, err)
				continue
			}
			if err := sw.writeLine(data); err != nil {
				return
			}
		}
	}
}

func readLines(body io.Reader, out chan<- []byte, errCh chan<- error) {
	defer close(out)
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		frame := make([]byte, len(line))
		copy(frame, line)
		out <- frame
	}
	errCh <- scanner.Err()
}

// pumpEvents multiplexes the session's event-bus channel onto the outbound
// stream as Notification{method:"event"} frames, until the session's
// channel is closed (on CloseSession/Unregister) or ctx is done.
func pumpEvents(ctx context.Context, sess *engine.Session, sw *syncWriter) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sess.Events:
			if !ok {
				return
			}
			note, err := jsonrpc.NewNotification("event", ev)
			if err != nil {
				continue
			}
			data, err := json.Marshal(note)
			if err != nil {
				continue
			}
			if err := sw.writeLine(data); err != nil {
				return
			}
		}
	}
}
