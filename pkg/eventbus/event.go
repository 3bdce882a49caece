// Package eventbus implements the process-global streaming fan-out: a
// broadcast channel plus per-client filtered channels, both bounded, with
// non-blocking sends and overflow counters rather than backpressure that
// could stall the engine.
package eventbus

// Kind identifies a StreamEvent variant. On the wire events serialize as a
// tagged sum in snake_case.
type Kind string

const (
	KindServerStarted Kind = "mcp_server_started"
	KindServerStopped Kind = "mcp_server_stopped"
	KindToolExecuted  Kind = "mcp_tool_executed"
	KindMessage       Kind = "mcp_message"
	KindSystemHealth  Kind = "system_health"
	KindError         Kind = "error"
)

// Event is the StreamEvent tagged sum. Only the fields relevant to Kind are
// populated; json tags with omitempty keep the wire payload minimal.
type Event struct {
	Kind Kind `json:"kind"`

	// mcp_server_started / mcp_server_stopped
	BackendID   string `json:"id,omitempty"`
	BackendName string `json:"name,omitempty"`
	Reason      string `json:"reason,omitempty"`

	// mcp_tool_executed
	Tool   string `json:"tool,omitempty"`
	Status string `json:"status,omitempty"`

	// mcp_message
	Payload any `json:"payload,omitempty"`

	// system_health
	CPU            float64 `json:"cpu,omitempty"`
	Mem            float64 `json:"mem,omitempty"`
	ActiveBackends int     `json:"active_backends,omitempty"`

	// error
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ServerStarted builds a mcp_server_started event.
func ServerStarted(backendID, name string) Event {
	return Event{Kind: KindServerStarted, BackendID: backendID, BackendName: name}
}

// ServerStopped builds a mcp_server_stopped event.
func ServerStopped(backendID, reason string) Event {
	return Event{Kind: KindServerStopped, BackendID: backendID, Reason: reason}
}

// ToolExecuted builds a mcp_tool_executed event.
func ToolExecuted(backendID, tool, status string) Event {
	return Event{Kind: KindToolExecuted, BackendID: backendID, Tool: tool, Status: status}
}

// Message builds a mcp_message event carrying an arbitrary backend payload.
func Message(backendID string, payload any) Event {
	return Event{Kind: KindMessage, BackendID: backendID, Payload: payload}
}

// SystemHealth builds a system_health event.
func SystemHealth(cpu, mem float64, activeBackends int) Event {
	return Event{Kind: KindSystemHealth, CPU: cpu, Mem: mem, ActiveBackends: activeBackends}
}

// ErrorEvent builds an error event.
func ErrorEvent(code int, message string) Event {
	return Event{Kind: KindError, Code: code, Message: message}
}

// Filter reports whether ev should be delivered to a subscriber. Filters
// are applied on the send side, so an uninterested consumer is never woken.
type Filter func(ev Event) bool

// MatchAll is the default filter: every event matches.
func MatchAll(Event) bool { return true }

// MatchBackend matches events tagged with the given backend id, plus
// system_health and error events, which are not backend-scoped.
func MatchBackend(backendID string) Filter {
	return func(ev Event) bool {
		switch ev.Kind {
		case KindSystemHealth, KindError:
			return true
		default:
			return ev.BackendID == backendID
		}
	}
}
