// Package engine implements the protocol engine (proxy): one logical MCP
// session per client stream, fanned out across every Running backend.
package engine

import (
	"sync"

	"github.com/stacklok/mcp-gateway/pkg/eventbus"
	"github.com/stacklok/mcp-gateway/pkg/jsonrpc"
)

// sessionState is the per-session initialize gate: a session starts
// Uninitialized, moves to Initializing as soon as its initialize request
// is being handled, and becomes Active once the client's
// notifications/initialized has been processed.
type sessionState int

const (
	stateUninitialized sessionState = iota
	stateInitializing
	stateActive
)

// discoveredItem tracks the prefix/original-name bookkeeping for one
// aggregated tool/resource/prompt entry.
type discoveredItem struct {
	backend      string
	originalName string
}

// Session is the per active client streaming connection. It owns its
// PendingRequest map exclusively; backend reader goroutines never hold a
// reference to it directly, only its ID.
type Session struct {
	ID      string
	Events  <-chan eventbus.Event
	Pending *jsonrpc.PendingTable

	mu              sync.Mutex
	state           sessionState
	initializedBackends map[string]bool
	discovery           map[string]discoveredItem // "<prefixed name>" -> original
}

// NewSession builds a fresh, Uninitialized session subscribed to bus with
// filter.
func NewSession(id string, bus *eventbus.Bus, filter eventbus.Filter) *Session {
	return &Session{
		ID:                  id,
		Events:              bus.Register(id, filter),
		Pending:             jsonrpc.NewPendingTable(),
		state:               stateUninitialized,
		initializedBackends: make(map[string]bool),
		discovery:           make(map[string]discoveredItem),
	}
}

func (s *Session) markInitializing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateInitializing
}

func (s *Session) markActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateActive
}

func (s *Session) currentState() sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setBackendInitialized(name string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initializedBackends[name] = ok
}

func (s *Session) isBackendInitialized(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initializedBackends[name]
}

func (s *Session) recordDiscovery(prefixed, backend, original string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discovery[prefixed] = discoveredItem{backend: backend, originalName: original}
}

func (s *Session) lookupDiscovery(prefixed string) (discoveredItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.discovery[prefixed]
	return item, ok
}
