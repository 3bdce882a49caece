// Command mcpgatewayd runs the MCP gateway: it authenticates callers,
// spawns and proxies configured backend MCP servers, and exposes a single
// streaming endpoint plus a small REST surface for backend-config CRUD.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	v1 "github.com/stacklok/mcp-gateway/pkg/api/v1"
	"github.com/stacklok/mcp-gateway/pkg/auth"
	"github.com/stacklok/mcp-gateway/pkg/backend"
	"github.com/stacklok/mcp-gateway/pkg/config"
	gwcrypto "github.com/stacklok/mcp-gateway/pkg/crypto"
	"github.com/stacklok/mcp-gateway/pkg/engine"
	"github.com/stacklok/mcp-gateway/pkg/eventbus"
	"github.com/stacklok/mcp-gateway/pkg/logger"
	"github.com/stacklok/mcp-gateway/pkg/store"
	"github.com/stacklok/mcp-gateway/pkg/store/sqlite"
	"github.com/stacklok/mcp-gateway/pkg/streamhttp"
)

// version is the gateway's build version, surfaced on /health.
const version = "dev"

const (
	middlewareTimeout = 60 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func main() {
	bootstrapKey := flag.String("bootstrap-key", "", "issue one admin API key with the given name, print it once, and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcpgatewayd: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)

	dbPath := cfg.DatabaseURL
	if dbPath == "" {
		dbPath = sqlite.DefaultDBPath()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		logger.Panicf("failed to open database: %v", err)
	}
	defer db.Close()

	aead, err := gwcrypto.NewAEAD(cfg.Encryption)
	if err != nil {
		logger.Panicf("failed to build AEAD: %v", err)
	}
	minter, err := auth.NewTokenMinter(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Panicf("failed to build token minter: %v", err)
	}

	apiKeyRepo := sqlite.NewApiKeyRepository(db)
	backendRepo := sqlite.NewBackendConfigRepository(db)
	authService := auth.NewService(apiKeyRepo, aead, minter)

	if *bootstrapKey != "" {
		raw, _, err := authService.GenerateAPIKey(ctx, *bootstrapKey)
		if err != nil {
			logger.Panicf("failed to issue bootstrap key: %v", err)
		}
		fmt.Fprintf(os.Stderr, "bootstrap api key (store this now, it will not be shown again): %s\n", raw)
		return
	}

	bus := eventbus.New()

	registry := backend.NewRegistry(cfg.BackendHealthInterval, true)
	registry.SetBus(bus)
	defer registry.Close()
	if err := respawnPersistedBackends(ctx, backendRepo, registry); err != nil {
		logger.Errorf("failed to respawn persisted backends: %v", err)
	}
	go registry.MonitorAll(ctx)

	eng := engine.New(registry, bus, engine.ServerInfo{Name: "mcp-gateway", Version: version})

	router := chi.NewRouter()
	router.Use(middleware.RequestID, middleware.Recoverer, middleware.Timeout(middlewareTimeout))
	router.Mount("/", v1.Router(v1.Deps{
		AuthService:   authService,
		BackendConfig: backendRepo,
		Registry:      registry,
		Stream:        streamhttp.New(eng),
		Version:       version,
	}))

	srv := &http.Server{
		BaseContext:       func(net.Listener) context.Context { return ctx },
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logger.Infof("starting http server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Panicf("server stopped with error: %v", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http server shutdown failed: %v", err)
	}
}

// respawnPersistedBackends spawns a registry Handle for every active
// backend config found at boot, so a restart resumes proxying without
// requiring the operator to re-issue each create call.
func respawnPersistedBackends(ctx context.Context, repo store.BackendConfigRepository, registry *backend.Registry) error {
	configs, err := repo.ListAll(ctx, false)
	if err != nil {
		return err
	}
	for _, cfg := range configs {
		if _, err := registry.SpawnFromConfig(ctx, *cfg); err != nil {
			logger.Errorf("backend %s: failed to spawn at boot: %v", cfg.Name, err)
		}
	}
	return nil
}
