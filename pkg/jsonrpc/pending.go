package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"
)

// ErrPendingNotFound is returned when a response or cancellation cannot be
// matched to any in-flight PendingRequest.
var ErrPendingNotFound = errors.New("jsonrpc: no pending request for id")

// Notifier sends an already-encoded frame to the backend a PendingRequest is
// in flight with. *backend.Handle satisfies this via its SendRaw method;
// jsonrpc cannot import backend directly (backend already imports jsonrpc),
// so this is the narrow capability PendingRequest needs instead of the
// concrete type.
type Notifier interface {
	SendRaw(ctx context.Context, data []byte) error
}

// PendingRequest is the correlation record the engine keeps between an
// outbound backend request and the eventual Response. It is resolved
// exactly once, either by a matching Response or by cancellation/timeout.
type PendingRequest struct {
	ClientID  RequestId // id the client used on its request (nil for backend-internal use)
	BackendID RequestId // id allocated for the backend-side request
	Backend   string    // id of the backend this request is in flight with
	Method    string
	SessionID string // owning session, looked up by id rather than held by reference, to avoid a reader/session reference cycle

	notifier Notifier // backend to notify on cancellation; nil in tests that never set it

	done     chan struct{}
	once     sync.Once
	response *Response
	err      error
}

// NewPendingRequest creates a PendingRequest awaiting resolution.
func NewPendingRequest(clientID, backendID RequestId, backend, method, sessionID string) *PendingRequest {
	return &PendingRequest{
		ClientID:  clientID,
		BackendID: backendID,
		Backend:   backend,
		Method:    method,
		SessionID: sessionID,
		done:      make(chan struct{}),
	}
}

// SetNotifier attaches the backend handle to notify on cancellation. Called
// once, right after construction, by whichever caller has the handle in
// scope.
func (p *PendingRequest) SetNotifier(n Notifier) {
	p.notifier = n
}

// Resolve completes the PendingRequest with a Response. Safe to call
// multiple times or concurrently with Cancel; only the first call has
// effect.
func (p *PendingRequest) Resolve(resp *Response) {
	p.once.Do(func() {
		p.response = resp
		close(p.done)
	})
}

// Cancel completes the PendingRequest with a synthesized error, used both
// on deadline expiry and on session teardown. It also notifies the backend
// with a notifications/cancelled frame carrying the backend-side id, so the
// backend stops work it's no longer being waited on for; the notify is
// best-effort and never blocks or affects the resolved response.
func (p *PendingRequest) Cancel(code int, message string) {
	p.once.Do(func() {
		p.response = NewErrorResponse(p.ClientID, code, message, nil)
		close(p.done)
		p.notifyCancelled()
	})
}

func (p *PendingRequest) notifyCancelled() {
	if p.notifier == nil {
		return
	}
	n, err := NewNotification("notifications/cancelled", map[string]any{"requestId": p.BackendID})
	if err != nil {
		return
	}
	data, err := json.Marshal(n)
	if err != nil {
		return
	}
	_ = p.notifier.SendRaw(context.Background(), data)
}

// Wait blocks until the PendingRequest is resolved, the deadline elapses, or
// ctx is cancelled.
func (p *PendingRequest) Wait(ctx context.Context, timeout time.Duration) (*Response, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		p.Cancel(InternalError, "request timed out")
		return p.response, nil
	case <-p.done:
		return p.response, p.err
	}
}

// PendingTable is a map of in-flight PendingRequests keyed by the
// backend-side RequestId; the engine keeps one per session and one per
// backend. Numeric ids match by value whether they were decoded as float64
// or allocated as an integer. The reader goroutine
// that delivers responses is a different goroutine than the one that
// creates requests, so a mutex guards the map; contention is low.
type PendingTable struct {
	mu      sync.Mutex
	pending map[string]*PendingRequest
}

// NewPendingTable creates an empty PendingTable.
func NewPendingTable() *PendingTable {
	return &PendingTable{pending: make(map[string]*PendingRequest)}
}

func keyFor(id RequestId) string {
	switch v := id.(type) {
	case int:
		return "number:" + strconv.FormatInt(int64(v), 10)
	case int64:
		return "number:" + strconv.FormatInt(v, 10)
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return "number:" + strconv.FormatInt(int64(v), 10)
		}
		return "number:" + strconv.FormatFloat(v, 'g', -1, 64)
	}
	return fmt.Sprintf("%T:%v", id, id)
}

// Add registers a PendingRequest under its backend-side id.
func (t *PendingTable) Add(p *PendingRequest) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[keyFor(p.BackendID)] = p
}

// Pop removes and returns the PendingRequest matching backendID, if any.
func (t *PendingTable) Pop(backendID RequestId) (*PendingRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.pending[keyFor(backendID)]
	if ok {
		delete(t.pending, keyFor(backendID))
	}
	return p, ok
}

// CancelAll resolves every outstanding PendingRequest with a cancellation
// error and empties the table — used on session teardown.
func (t *PendingTable) CancelAll(code int, message string) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[string]*PendingRequest)
	t.mu.Unlock()
	for _, p := range pending {
		p.Cancel(code, message)
	}
}

// Len reports the number of outstanding requests.
func (t *PendingTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
