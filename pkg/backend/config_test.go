package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateHTTPBackend(t *testing.T) {
	cfg := &BackendConfig{Name: "search", Transport: TransportHTTP, URL: "https://example.com/mcp"}
	assert.NoError(t, cfg.Validate())
}

func TestValidateStdioBackend(t *testing.T) {
	cfg := &BackendConfig{Name: "filesystem", Transport: TransportStdio, Command: "mcp-fs"}
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnderscoreInName(t *testing.T) {
	cfg := &BackendConfig{Name: "my_backend", Transport: TransportStdio, Command: "x"}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingURL(t *testing.T) {
	cfg := &BackendConfig{Name: "search", Transport: TransportHTTP}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingCommand(t *testing.T) {
	cfg := &BackendConfig{Name: "fs", Transport: TransportStdio}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMixedFields(t *testing.T) {
	cfg := &BackendConfig{Name: "fs", Transport: TransportHTTP, URL: "http://x", Command: "y"}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownTransport(t *testing.T) {
	cfg := &BackendConfig{Name: "fs", Transport: "carrier-pigeon"}
	assert.Error(t, cfg.Validate())
}
