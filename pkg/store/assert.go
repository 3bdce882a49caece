package store

import (
	"github.com/stacklok/mcp-gateway/pkg/store/memory"
	"github.com/stacklok/mcp-gateway/pkg/store/sqlite"
)

var (
	_ ApiKeyRepository        = (*sqlite.ApiKeyRepository)(nil)
	_ BackendConfigRepository = (*sqlite.BackendConfigRepository)(nil)
	_ ApiKeyRepository        = (*memory.ApiKeyRepository)(nil)
	_ BackendConfigRepository = (*memory.BackendConfigRepository)(nil)
)
