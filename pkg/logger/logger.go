// Package logger provides the gateway's process-wide structured logger, a
// thin slog wrapper exposing the printf-style calls used throughout the
// codebase (Infof, Warnf, Errorf, Debugf, Panicf).
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

var (
	mu  sync.RWMutex
	log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// Init (re)configures the package-level logger from a textual level name
// ("debug", "info", "warn", "error"; unrecognized values default to info).
// Called once at boot from the loaded Config.
func Init(levelName string) {
	level := parseLevel(levelName)
	mu.Lock()
	defer mu.Unlock()
	log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func parseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debugf logs at DEBUG level.
func Debugf(format string, args ...any) { current().Debug(sprintf(format, args...)) }

// Infof logs at INFO level.
func Infof(format string, args ...any) { current().Info(sprintf(format, args...)) }

// Warnf logs at WARN level.
func Warnf(format string, args ...any) { current().Warn(sprintf(format, args...)) }

// Errorf logs at ERROR level.
func Errorf(format string, args ...any) { current().Error(sprintf(format, args...)) }

// Panicf logs at ERROR level then panics. Reserved for unrecoverable
// boot-time failures.
func Panicf(format string, args ...any) {
	msg := sprintf(format, args...)
	current().Error(msg)
	panic(msg)
}

// With returns a child logger-scoped function set carrying the given
// structured fields (key/value pairs), for call sites that want to tag
// every line with e.g. a backend id or request id.
func With(args ...any) *Scoped {
	return &Scoped{l: current().With(args...)}
}

// Scoped is a logger carrying fixed structured fields.
type Scoped struct {
	l *slog.Logger
}

func (s *Scoped) Debugf(format string, args ...any) { s.l.Debug(sprintf(format, args...)) }
func (s *Scoped) Infof(format string, args ...any)  { s.l.Info(sprintf(format, args...)) }
func (s *Scoped) Warnf(format string, args ...any)  { s.l.Warn(sprintf(format, args...)) }
func (s *Scoped) Errorf(format string, args ...any) { s.l.Error(sprintf(format, args...)) }

// FromContext returns a Scoped over the package-level logger. It reads no
// fields from ctx, so its output carries no request-scoped fields.
func FromContext(_ context.Context) *Scoped {
	return &Scoped{l: current()}
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
