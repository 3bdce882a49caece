package backend

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/stacklok/mcp-gateway/pkg/jsonrpc"
)

// Status is the BackendHandle lifecycle state. Transitions are monotonic
// per process: Starting -> Running -> (Stopped | Failed). There is no
// Running -> Starting.
type Status int

const (
	StatusStarting Status = iota
	StatusRunning
	StatusStopped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// transport is the capability every backend variant (stdio, http) exposes
// to the handle. Modeling it this way avoids a runtime interface-trait
// proliferation: each variant owns its transport-specific state directly.
type transport interface {
	start(ctx context.Context) error
	send(ctx context.Context, frame []byte) error
	stop(ctx context.Context) error
	healthy(ctx context.Context) bool
}

// Handle owns a running backend: either a stdio child process or an HTTP
// endpoint. It is the runtime counterpart to BackendConfig and is never
// persisted.
type Handle struct {
	Config BackendConfig

	mu         sync.RWMutex
	status     Status
	failReason string

	transport transport
	frames    chan []byte

	failureCount atomic.Int32
}

// NewHandle builds a Handle in StatusStarting for the given config. The
// caller must call Start to actually spawn/connect the transport.
func NewHandle(cfg BackendConfig) (*Handle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	h := &Handle{
		Config: cfg,
		status: StatusStarting,
		frames: make(chan []byte, 256),
	}
	switch cfg.Transport {
	case TransportStdio:
		h.transport = newStdioTransport(cfg, h.frames)
	case TransportHTTP, TransportSSE:
		h.transport = newHTTPTransport(cfg, h.frames)
	}
	return h, nil
}

// Start spawns the subprocess or establishes the HTTP connection pool and
// transitions to Running on success, Failed on error.
func (h *Handle) Start(ctx context.Context) error {
	if err := h.transport.start(ctx); err != nil {
		h.markFailed(err.Error())
		return err
	}
	h.mu.Lock()
	h.status = StatusRunning
	h.mu.Unlock()
	return nil
}

// Status reports the current lifecycle state.
func (h *Handle) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// FailReason reports the reason recorded when the handle transitioned to
// Failed; empty otherwise.
func (h *Handle) FailReason() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.failReason
}

// Frames returns the channel on which demultiplexed inbound frames from the
// backend are delivered.
func (h *Handle) Frames() <-chan []byte {
	return h.frames
}

// Send serializes and writes msg to the backend. Back-pressure on a slow
// backend must not deadlock the engine: writes use a bounded queue and
// ErrBackendBusy is returned on overflow rather than blocking forever.
func (h *Handle) Send(ctx context.Context, msg *jsonrpc.Request) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return h.transport.send(ctx, data)
}

// SendRaw writes an already-encoded frame (used for notifications, whose
// envelope the caller has already built).
func (h *Handle) SendRaw(ctx context.Context, data []byte) error {
	return h.transport.send(ctx, data)
}

// Stop attempts graceful-then-forceful shutdown and transitions to Stopped.
func (h *Handle) Stop(ctx context.Context) error {
	err := h.transport.stop(ctx)
	h.mu.Lock()
	h.status = StatusStopped
	h.mu.Unlock()
	return err
}

// Healthy runs the transport's health probe: a non-blocking wait for stdio;
// for http, a plain GET of the backend URL, where any status below 500
// counts as healthy. No initialize or ping request is sent to http backends.
func (h *Handle) Healthy(ctx context.Context) bool {
	return h.transport.healthy(ctx)
}

// RecordHealthFailure increments the consecutive-miss counter and returns
// the new count; the caller (the registry's monitor) decides the miss
// threshold for marking Failed.
func (h *Handle) RecordHealthFailure() int32 {
	return h.failureCount.Add(1)
}

// ResetHealthFailures clears the consecutive-miss counter after a
// successful probe.
func (h *Handle) ResetHealthFailures() {
	h.failureCount.Store(0)
}

func (h *Handle) markFailed(reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = StatusFailed
	h.failReason = reason
}
