package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/stacklok/mcp-gateway/pkg/eventbus"
	gwerrors "github.com/stacklok/mcp-gateway/pkg/errors"
	"github.com/stacklok/mcp-gateway/pkg/logger"
)

// maxConsecutiveHealthMisses marks a backend Failed after this many
// consecutive health-probe failures.
const maxConsecutiveHealthMisses = 3

// Registry is the keyed map backend-id -> *Handle. A reader-writer
// discipline allows many concurrent Get calls; mutations serialize.
type Registry struct {
	mu       sync.RWMutex
	handles  map[string]*Handle
	interval time.Duration
	autoRestart bool
	bus         *eventbus.Bus

	stopMonitor chan struct{}
	monitorOnce sync.Once
}

// NewRegistry builds an empty Registry. interval is the health-poll period
// (spec default 10s); autoRestart controls whether Failed backends are
// automatically respawned by the monitor loop.
func NewRegistry(interval time.Duration, autoRestart bool) *Registry {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Registry{
		handles:     make(map[string]*Handle),
		interval:    interval,
		autoRestart: autoRestart,
		stopMonitor: make(chan struct{}),
	}
}

// SetBus wires the registry to an event bus so backend lifecycle
// transitions and periodic system_health readings are published for
// streaming clients. Nil-safe: an unwired registry silently drops events.
func (r *Registry) SetBus(bus *eventbus.Bus) {
	r.mu.Lock()
	r.bus = bus
	r.mu.Unlock()
}

func (r *Registry) publish(ev eventbus.Event) {
	r.mu.RLock()
	bus := r.bus
	r.mu.RUnlock()
	if bus != nil {
		bus.PublishEvent(ev)
	}
}

// List returns a snapshot of all handles.
func (r *Registry) List() []*Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		out = append(out, h)
	}
	return out
}

// Get returns the handle for id, or a NotFound error.
func (r *Registry) Get(id string) (*Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[id]
	if !ok {
		return nil, gwerrors.NewNotFoundError(fmt.Sprintf("backend %s not found", id), nil)
	}
	return h, nil
}

// SpawnFromConfig builds a Handle for cfg, starts its transport, and
// registers it under cfg.ID.
func (r *Registry) SpawnFromConfig(ctx context.Context, cfg BackendConfig) (*Handle, error) {
	h, err := NewHandle(cfg)
	if err != nil {
		return nil, err
	}
	if err := h.Start(ctx); err != nil {
		logger.Warnf("backend %s: start failed: %v", cfg.Name, err)
		r.publish(eventbus.ServerStopped(cfg.ID, "start_failed: "+err.Error()))
	} else {
		r.publish(eventbus.ServerStarted(cfg.ID, cfg.Name))
	}

	r.mu.Lock()
	r.handles[cfg.ID] = h
	r.mu.Unlock()
	return h, nil
}

// Stop stops and unregisters the backend with id.
func (r *Registry) Stop(ctx context.Context, id string) error {
	r.mu.Lock()
	h, ok := r.handles[id]
	if ok {
		delete(r.handles, id)
	}
	r.mu.Unlock()
	if !ok {
		return gwerrors.NewNotFoundError(fmt.Sprintf("backend %s not found", id), nil)
	}
	err := h.Stop(ctx)
	r.publish(eventbus.ServerStopped(id, "stopped"))
	return err
}

// Restart stops and re-spawns the backend with id from its current config.
func (r *Registry) Restart(ctx context.Context, id string) (*Handle, error) {
	r.mu.Lock()
	h, ok := r.handles[id]
	r.mu.Unlock()
	if !ok {
		return nil, gwerrors.NewNotFoundError(fmt.Sprintf("backend %s not found", id), nil)
	}
	cfg := h.Config
	_ = h.Stop(ctx)
	r.publish(eventbus.ServerStopped(id, "restarting"))
	return r.SpawnFromConfig(ctx, cfg)
}

// MonitorAll starts the background health-poll loop. It runs until the
// registry's Close is called or ctx is cancelled.
func (r *Registry) MonitorAll(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.probeAll(ctx)
			r.publishSystemHealth(ctx)
		case <-r.stopMonitor:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *Registry) probeAll(ctx context.Context) {
	for _, h := range r.List() {
		if h.Status() != StatusRunning {
			continue
		}
		if h.Healthy(ctx) {
			h.ResetHealthFailures()
			continue
		}
		misses := h.RecordHealthFailure()
		if misses >= maxConsecutiveHealthMisses {
			h.markFailed("health probe timed out")
			logger.Warnf("backend %s: marked failed after %d consecutive health misses", h.Config.Name, misses)
			r.publish(eventbus.ServerStopped(h.Config.ID, "health probe timed out"))
			if r.autoRestart {
				if _, err := r.Restart(ctx, h.Config.ID); err != nil {
					logger.Errorf("backend %s: auto-restart failed: %v", h.Config.Name, err)
				}
			}
		}
	}
}

// publishSystemHealth samples host CPU/memory and the registry's current
// Running count, publishing one system_health event per tick. Sampling
// errors are logged and skipped rather than stalling the monitor loop.
func (r *Registry) publishSystemHealth(ctx context.Context) {
	r.mu.RLock()
	bus := r.bus
	r.mu.RUnlock()
	if bus == nil {
		return
	}

	var cpuPct float64
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		logger.Warnf("system health: cpu sample failed: %v", err)
	} else if len(percents) > 0 {
		cpuPct = percents[0]
	}

	var memPct float64
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		logger.Warnf("system health: memory sample failed: %v", err)
	} else {
		memPct = vm.UsedPercent
	}

	active := 0
	for _, h := range r.List() {
		if h.Status() == StatusRunning {
			active++
		}
	}

	bus.PublishEvent(eventbus.SystemHealth(cpuPct, memPct, active))
}

// Close stops the monitor loop. Safe to call multiple times.
func (r *Registry) Close() {
	r.monitorOnce.Do(func() { close(r.stopMonitor) })
}
