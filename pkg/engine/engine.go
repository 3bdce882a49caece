package engine

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/stacklok/mcp-gateway/pkg/backend"
	"github.com/stacklok/mcp-gateway/pkg/eventbus"
	"github.com/stacklok/mcp-gateway/pkg/jsonrpc"
	"github.com/stacklok/mcp-gateway/pkg/logger"
)

// defaultRequestTimeout is the default PendingRequest deadline, overridable
// per method.
const defaultRequestTimeout = 60 * time.Second

// initializeTimeout bounds each backend's initialize round trip during
// session setup.
const initializeTimeout = 10 * time.Second

// ProtocolVersion is the version this engine advertises to clients; the
// aggregated InitializeResult reports the minimum of this and every
// responding backend's own version.
const ProtocolVersion = "2024-11-05"

// ServerInfo is the engine's own identity, returned in every
// InitializeResult regardless of which backends are behind it.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// discoveryMethods maps each client-facing discovery method to the result
// field holding the aggregated list.
var discoveryMethods = map[string]string{
	"tools/list":     "tools",
	"resources/list": "resources",
	"prompts/list":   "prompts",
}

// routedNameField names the parameter field each routed method uses to
// carry the (possibly prefixed) target name.
var routedNameField = map[string]string{
	"tools/call":     "name",
	"resources/read": "uri",
	"prompts/get":    "name",
}

// Engine manages one logical MCP session per client stream, fanned out
// across every Running backend.
type Engine struct {
	registry *backend.Registry
	bus      *eventbus.Bus
	info     ServerInfo

	mu                sync.RWMutex
	sessions          map[string]*Session
	backendAllocators map[string]*jsonrpc.IDAllocator
	backendTables     map[string]*jsonrpc.PendingTable

	readersStarted sync.Map // backend id -> struct{}, guards starting one reader per backend
}

// New builds an Engine over registry and bus.
func New(registry *backend.Registry, bus *eventbus.Bus, info ServerInfo) *Engine {
	return &Engine{
		registry:          registry,
		bus:               bus,
		info:              info,
		sessions:          make(map[string]*Session),
		backendAllocators: make(map[string]*jsonrpc.IDAllocator),
		backendTables:     make(map[string]*jsonrpc.PendingTable),
	}
}

// OpenSession creates and registers a new Session, starting a backend
// reader goroutine for every currently known backend that does not already
// have one.
func (e *Engine) OpenSession(id string, filter eventbus.Filter) *Session {
	sess := NewSession(id, e.bus, filter)

	e.mu.Lock()
	e.sessions[id] = sess
	e.mu.Unlock()

	for _, h := range e.registry.List() {
		e.ensureReader(h)
	}
	return sess
}

// CloseSession tears down a session: cancels its outstanding
// PendingRequests (each cancellation also notifies the owning backend with
// notifications/cancelled) and unregisters its event subscription.
// Backends are never stopped here — they are process-global and shared
// across sessions.
func (e *Engine) CloseSession(id string) {
	e.mu.Lock()
	sess, ok := e.sessions[id]
	if ok {
		delete(e.sessions, id)
	}
	e.mu.Unlock()
	if !ok {
		return
	}
	sess.Pending.CancelAll(jsonrpc.ErrRequestCancelled, "session closed")
	e.bus.Unregister(id)
}

func (e *Engine) backendTable(backendID string) *jsonrpc.PendingTable {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.backendTables[backendID]
	if !ok {
		t = jsonrpc.NewPendingTable()
		e.backendTables[backendID] = t
	}
	return t
}

func (e *Engine) backendAllocator(backendID string) *jsonrpc.IDAllocator {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.backendAllocators[backendID]
	if !ok {
		a = &jsonrpc.IDAllocator{}
		e.backendAllocators[backendID] = a
	}
	return a
}

// HandleMessage processes one inbound client frame. A Request produces a
// Response to write back; a Notification never produces one.
func (e *Engine) HandleMessage(ctx context.Context, sess *Session, raw []byte) (*jsonrpc.Response, error) {
	kind, err := jsonrpc.Classify(raw)
	if err != nil {
		return jsonrpc.NewParseError(nil, err.Error()), nil
	}

	switch kind {
	case jsonrpc.KindNotification:
		var n jsonrpc.Notification
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, nil
		}
		e.handleClientNotification(ctx, sess, &n)
		return nil, nil

	case jsonrpc.KindRequest:
		var req jsonrpc.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			return jsonrpc.NewParseError(nil, err.Error()), nil
		}
		return e.handleClientRequest(ctx, sess, &req), nil

	default:
		return jsonrpc.NewInvalidRequestError(nil, "frame is neither request nor notification"), nil
	}
}

func (e *Engine) handleClientNotification(ctx context.Context, sess *Session, n *jsonrpc.Notification) {
	switch n.Method {
	case "notifications/initialized":
		e.forwardInitializedToBackends(ctx, sess)
		sess.markActive()
	default:
		logger.Warnf("session %s: unhandled client notification %s", sess.ID, n.Method)
	}
}

func (e *Engine) handleClientRequest(ctx context.Context, sess *Session, req *jsonrpc.Request) *jsonrpc.Response {
	state := sess.currentState()

	if req.Method != "initialize" && state != stateActive {
		return jsonrpc.NewInvalidRequestError(req.Id, "session is not active: send initialize and notifications/initialized first")
	}
	if req.Method == "initialize" && state != stateUninitialized {
		return jsonrpc.NewInvalidRequestError(req.Id, "session already initialized")
	}

	if req.Method == "initialize" {
		return e.handleInitialize(ctx, sess, req)
	}
	if _, ok := discoveryMethods[req.Method]; ok {
		return e.handleDiscovery(ctx, sess, req)
	}
	if _, ok := routedNameField[req.Method]; ok {
		return e.handleRoutedCall(ctx, sess, req)
	}
	return jsonrpc.NewMethodNotFoundError(req.Id, req.Method)
}

// prefixedName builds the "<backend>_<original>" aggregated name.
func prefixedName(backendName, original string) string {
	return backendName + "_" + original
}

// splitPrefixed splits at the first underscore. Backend names are rejected
// at registration time if they contain an underscore, so this split is
// unambiguous.
func splitPrefixed(name string) (backendName, original string, ok bool) {
	for i := 0; i < len(name); i++ {
		if name[i] == '_' {
			return name[:i], name[i+1:], true
		}
	}
	return "", "", false
}

func (e *Engine) ensureReader(h *backend.Handle) {
	if _, loaded := e.readersStarted.LoadOrStore(h.Config.ID, struct{}{}); loaded {
		return
	}
	go e.readBackend(h)
}

// dispatch sends a request for method/params to h, registers a
// PendingRequest tagged with sess.ID against the engine's per-backend
// table, and waits up to timeout for the matching response or a
// synthesized -32603 on deadline.
func (e *Engine) dispatch(ctx context.Context, sess *Session, h *backend.Handle, method string, params json.RawMessage, timeout time.Duration) (*jsonrpc.Response, error) {
	backendID := e.backendAllocator(h.Config.ID).Next()
	pending := jsonrpc.NewPendingRequest(nil, backendID, h.Config.ID, method, sess.ID)
	pending.SetNotifier(h)
	e.backendTable(h.Config.ID).Add(pending)
	sess.Pending.Add(pending)

	req := &jsonrpc.Request{Jsonrpc: jsonrpc.Version, Id: backendID, Method: method, Params: params}
	data, err := json.Marshal(req)
	if err != nil {
		e.backendTable(h.Config.ID).Pop(backendID)
		return nil, err
	}
	if err := h.SendRaw(ctx, data); err != nil {
		e.backendTable(h.Config.ID).Pop(backendID)
		return nil, err
	}
	resp, err := pending.Wait(ctx, timeout)
	// A response that arrives before the deadline already popped both
	// tables in routeBackendResponse; on timeout/ctx-cancellation neither
	// ever did, so this cleans up what's otherwise a permanent entry in
	// the engine's process-global per-backend table.
	e.backendTable(h.Config.ID).Pop(backendID)
	sess.Pending.Pop(backendID)
	return resp, err
}

// readBackend demultiplexes inbound frames from one backend: responses are
// matched to a PendingRequest by backend-side id, then routed back to the
// owning session purely by id lookup (a weak reference that avoids a cyclic
// reader/session ownership); unmatched responses are dropped with a
// warning. Unsolicited notifications are republished onto the event
// bus tagged with the backend id, so any session subscribed to that backend
// (via eventbus.MatchBackend) observes them.
func (e *Engine) readBackend(h *backend.Handle) {
	for frame := range h.Frames() {
		kind, err := jsonrpc.Classify(frame)
		if err != nil {
			continue
		}
		switch kind {
		case jsonrpc.KindResponse:
			e.routeBackendResponse(h.Config.ID, frame)
		case jsonrpc.KindRequest, jsonrpc.KindNotification:
			e.bus.PublishEvent(eventbus.Message(h.Config.ID, json.RawMessage(frame)))
		}
	}
}

func (e *Engine) routeBackendResponse(backendID string, frame []byte) {
	var resp jsonrpc.Response
	if err := json.Unmarshal(frame, &resp); err != nil {
		return
	}
	pending, ok := e.backendTable(backendID).Pop(resp.Id)
	if !ok {
		logger.Warnf("backend %s: response for unknown id %v dropped", backendID, resp.Id)
		return
	}
	resp.Id = pending.ClientID
	pending.Resolve(&resp)

	// The session's own PendingTable is a second index over the same
	// PendingRequest, since sessions own their pending set exclusively;
	// drop it there too now that it is resolved, looking the session up by
	// id rather than holding a reference to it.
	e.mu.RLock()
	sess, ok := e.sessions[pending.SessionID]
	e.mu.RUnlock()
	if ok {
		sess.Pending.Pop(pending.BackendID)
	}
}

// backendInitResult carries one backend's initialize outcome back to the
// fan-out aggregator in handleInitialize.
type backendInitResult struct {
	id, name     string
	capabilities map[string]any
	version      string
	ok           bool
}

// handleInitialize fans initialize out to every Running backend
// concurrently with a per-backend deadline, then aggregates a single
// InitializeResult.
func (e *Engine) handleInitialize(ctx context.Context, sess *Session, req *jsonrpc.Request) *jsonrpc.Response {
	sess.markInitializing()

	handles := e.registry.List()
	results := make(chan backendInitResult, len(handles))

	for _, h := range handles {
		h := h
		if h.Status() != backend.StatusRunning {
			results <- backendInitResult{id: h.Config.ID, name: h.Config.Name, ok: false}
			continue
		}
		e.ensureReader(h)
		go func() {
			subCtx, cancel := context.WithTimeout(ctx, initializeTimeout)
			defer cancel()
			params, _ := json.Marshal(map[string]any{"protocolVersion": ProtocolVersion})
			resp, err := e.dispatch(subCtx, sess, h, "initialize", params, initializeTimeout)
			if err != nil || resp == nil || resp.Error != nil {
				results <- backendInitResult{id: h.Config.ID, name: h.Config.Name, ok: false}
				return
			}
			var parsed struct {
				ProtocolVersion string         `json:"protocolVersion"`
				Capabilities    map[string]any `json:"capabilities"`
			}
			_ = json.Unmarshal(resp.Result, &parsed)
			results <- backendInitResult{
				id: h.Config.ID, name: h.Config.Name,
				capabilities: parsed.Capabilities, version: parsed.ProtocolVersion, ok: true,
			}
		}()
	}

	capabilities := make(map[string]any)
	minVersion := ProtocolVersion
	for i := 0; i < len(handles); i++ {
		r := <-results
		sess.setBackendInitialized(r.name, r.ok)
		if !r.ok {
			e.bus.PublishEvent(eventbus.ServerStopped(r.id, "initialize_error"))
			continue
		}
		for k, v := range r.capabilities {
			capabilities[k] = v
		}
		if r.version != "" && r.version < minVersion {
			minVersion = r.version
		}
	}

	result, err := jsonrpc.NewResult(req.Id, map[string]any{
		"protocolVersion": minVersion,
		"capabilities":    capabilities,
		"serverInfo":      e.info,
	})
	if err != nil {
		return jsonrpc.NewInternalErrorResponse(req.Id, "failed to build initialize result")
	}
	return result
}

func (e *Engine) forwardInitializedToBackends(ctx context.Context, sess *Session) {
	note, err := jsonrpc.NewNotification("notifications/initialized", nil)
	if err != nil {
		return
	}
	data, err := json.Marshal(note)
	if err != nil {
		return
	}
	for _, h := range e.registry.List() {
		if !sess.isBackendInitialized(h.Config.Name) {
			continue
		}
		if err := h.SendRaw(ctx, data); err != nil {
			logger.Warnf("backend %s: failed to forward notifications/initialized: %v", h.Config.Name, err)
		}
	}
}

// handleDiscovery queries tools/list, resources/list, or prompts/list
// against every backend the session has initialized, merges the results
// with "<backend>_<original>" prefixing, and records the prefixed-to-original
// mapping on the session; routing itself splits the prefixed name. A backend that does not answer within
// initializeTimeout is omitted from the merge and reported via an error
// event rather than failing the whole request.
func (e *Engine) handleDiscovery(ctx context.Context, sess *Session, req *jsonrpc.Request) *jsonrpc.Response {
	field := discoveryMethods[req.Method]

	type partial struct {
		backendName string
		items       []map[string]any
		ok          bool
	}

	handles := e.registry.List()
	results := make(chan partial, len(handles))
	pending := 0

	for _, h := range handles {
		h := h
		if h.Status() != backend.StatusRunning || !sess.isBackendInitialized(h.Config.Name) {
			continue
		}
		pending++
		go func() {
			subCtx, cancel := context.WithTimeout(ctx, initializeTimeout)
			defer cancel()
			resp, err := e.dispatch(subCtx, sess, h, req.Method, req.Params, initializeTimeout)
			if err != nil || resp == nil || resp.Error != nil {
				e.bus.PublishEvent(eventbus.ErrorEvent(jsonrpc.ErrBackendUnavailable, "backend "+h.Config.Name+" did not answer "+req.Method))
				results <- partial{backendName: h.Config.Name, ok: false}
				return
			}
			var parsed map[string]json.RawMessage
			if err := json.Unmarshal(resp.Result, &parsed); err != nil {
				results <- partial{backendName: h.Config.Name, ok: false}
				return
			}
			var items []map[string]any
			if raw, ok := parsed[field]; ok {
				_ = json.Unmarshal(raw, &items)
			}
			results <- partial{backendName: h.Config.Name, items: items, ok: true}
		}()
	}

	merged := make([]map[string]any, 0)
	for i := 0; i < pending; i++ {
		p := <-results
		if !p.ok {
			continue
		}
		for _, item := range p.items {
			original, _ := item["name"].(string)
			if original == "" {
				original, _ = item["uri"].(string)
			}
			agg := prefixedName(p.backendName, original)
			sess.recordDiscovery(agg, p.backendName, original)

			copyItem := make(map[string]any, len(item))
			for k, v := range item {
				copyItem[k] = v
			}
			if _, hasName := copyItem["name"]; hasName {
				copyItem["name"] = agg
			} else if _, hasURI := copyItem["uri"]; hasURI {
				copyItem["uri"] = agg
			}
			merged = append(merged, copyItem)
		}
	}

	resp, err := jsonrpc.NewResult(req.Id, map[string]any{field: merged})
	if err != nil {
		return jsonrpc.NewInternalErrorResponse(req.Id, "failed to build "+req.Method+" result")
	}
	return resp
}

// handleRoutedCall routes tools/call, resources/read, or prompts/get to the
// backend named by the request's prefixed name/uri, rewriting it back to
// the backend's original name before forwarding. A missing or non-Running
// backend, or one that did not initialize for this session, is reported as an MCP-level error (isError: true), not a
// JSON-RPC protocol error.
func (e *Engine) handleRoutedCall(ctx context.Context, sess *Session, req *jsonrpc.Request) *jsonrpc.Response {
	field := routedNameField[req.Method]

	var params map[string]json.RawMessage
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return jsonrpc.NewInvalidRequestError(req.Id, "params must be an object")
	}
	var prefixed string
	if err := json.Unmarshal(params[field], &prefixed); err != nil {
		return jsonrpc.NewInvalidRequestError(req.Id, "missing or invalid "+field)
	}

	backendName, original, ok := splitPrefixed(prefixed)
	if !ok {
		return mcpCallError(req.Id, "unknown target: "+prefixed)
	}

	var target *backend.Handle
	for _, h := range e.registry.List() {
		if h.Config.Name == backendName {
			target = h
			break
		}
	}
	if target == nil || target.Status() != backend.StatusRunning || !sess.isBackendInitialized(backendName) {
		return mcpCallError(req.Id, "backend unavailable: "+backendName)
	}

	params[field] = mustMarshal(original)
	rewritten, err := json.Marshal(params)
	if err != nil {
		return jsonrpc.NewInternalErrorResponse(req.Id, "failed to rewrite request params")
	}

	resp, err := e.dispatch(ctx, sess, target, req.Method, rewritten, defaultRequestTimeout)
	if err != nil {
		return mcpCallError(req.Id, err.Error())
	}
	if resp.Error != nil {
		return mcpCallError(req.Id, resp.Error.Message)
	}

	e.bus.PublishEvent(eventbus.ToolExecuted(target.Config.ID, original, "ok"))
	return &jsonrpc.Response{Jsonrpc: jsonrpc.Version, Id: req.Id, Result: resp.Result}
}

// mcpCallError builds a successful JSON-RPC Response whose result carries
// an MCP-level error (isError: true), distinct from a JSON-RPC protocol
// error.
func mcpCallError(id jsonrpc.RequestId, message string) *jsonrpc.Response {
	resp, _ := jsonrpc.NewResult(id, map[string]any{
		"content": []map[string]any{{"type": "text", "text": message}},
		"isError": true,
	})
	return resp
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
