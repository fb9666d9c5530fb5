package vgraph

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called while a render loop is logging.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for vgraph and its sub-packages.
// By default vgraph produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by vgraph:
//   - [slog.LevelDebug]: per-frame diagnostics (batch counts, skipped frames)
//   - [slog.LevelInfo]: lifecycle events (pipeline created, loop started)
//   - [slog.LevelWarn]: non-fatal issues (path skipped, frame failed)
//
// Example:
//
//	vgraph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by vgraph.
// Sub-packages (render/, backend/...) call this to share one logger
// configuration without import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
