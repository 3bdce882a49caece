// Package backend implements the backend transport layer: BackendConfig,
// the BackendHandle state machine over stdio and HTTP backends, and the
// BackendRegistry that owns them.
package backend

import (
	"strings"

	gwerrors "github.com/stacklok/mcp-gateway/pkg/errors"
)

// Transport identifies how the gateway talks to a backend server.
type Transport string

const (
	TransportHTTP  Transport = "http"
	TransportSSE   Transport = "sse"
	TransportStdio Transport = "stdio"
)

// BackendConfig is the persisted description of a backend MCP server.
// Exactly one transport-specific field set is consistent with Transport:
// http/sse carry URL; stdio carries Command/Args/Env/WorkingDir.
type BackendConfig struct {
	ID         string
	Name       string
	Transport  Transport
	URL        string
	Command    string
	Args       []string
	Env        map[string]string
	WorkingDir string
	Active     bool
}

// Validate checks the transport/field consistency invariant and rejects
// backend names containing an underscore, since the engine uses
// "<backend_name>_<original_name>" to prefix aggregated tool names and an
// underscore in the name itself would make that split ambiguous.
func (c *BackendConfig) Validate() error {
	if c.Name == "" {
		return gwerrors.NewBadRequestError("backend name must not be empty", nil)
	}
	if strings.Contains(c.Name, "_") {
		return gwerrors.NewBadRequestError("backend name must not contain '_'", nil)
	}

	switch c.Transport {
	case TransportHTTP, TransportSSE:
		if c.URL == "" {
			return gwerrors.NewBadRequestError("http/sse backend requires a url", nil)
		}
		if c.Command != "" || len(c.Args) > 0 || c.WorkingDir != "" {
			return gwerrors.NewBadRequestError("http/sse backend must not set stdio fields", nil)
		}
	case TransportStdio:
		if c.Command == "" {
			return gwerrors.NewBadRequestError("stdio backend requires a command", nil)
		}
		if c.URL != "" {
			return gwerrors.NewBadRequestError("stdio backend must not set url", nil)
		}
	default:
		return gwerrors.NewBadRequestError("unknown transport: "+string(c.Transport), nil)
	}
	return nil
}
