// Package debug provides the library's logging surface on log/slog.
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	logger  = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	verbose bool
)

// Init reconfigures the logger. With enable set, debug-level records are
// written to stderr; otherwise output starts at info.
func Init(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = enable
	level := slog.LevelInfo
	if enable {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Silence discards all output. Used by tests.
func Silence() {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Enabled reports whether debug-level logging is on.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs at debug level.
func Debug(msg string, args ...any) { current().Debug(msg, args...) }

// Info logs at info level.
func Info(msg string, args ...any) { current().Info(msg, args...) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { current().Warn(msg, args...) }

// Error logs at error level.
func Error(msg string, args ...any) { current().Error(msg, args...) }
