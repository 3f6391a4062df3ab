package log

import (
	"context"
	"log/slog"
)

// Interrupter terminates an in-flight status line so another writer can
// use the stream. It is satisfied by *progress.Reporter.
type Interrupter interface {
	Interrupt()
}

// StatusHandler wraps an slog.Handler and interrupts the status line
// before each record is passed through. It integrates seamlessly with
// standard slog APIs and works with any underlying handler (text, JSON,
// etc.).
type StatusHandler struct {
	// handler is the underlying slog handler that receives records.
	handler slog.Handler

	// status is interrupted before every emitted record.
	// A nil status makes the wrapper a transparent passthrough.
	status Interrupter
}

// NewStatusHandler creates a StatusHandler wrapping the given handler.
// If handler is nil, the returned StatusHandler will use
// slog.Default().Handler().
func NewStatusHandler(handler slog.Handler, status Interrupter) *StatusHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &StatusHandler{handler: handler, status: status}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *StatusHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle interrupts the status line and passes the record through.
func (h *StatusHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.status != nil {
		h.status.Interrupt()
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *StatusHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &StatusHandler{handler: h.handler.WithAttrs(attrs), status: h.status}
}

// WithGroup returns a new handler with the given group name.
func (h *StatusHandler) WithGroup(name string) slog.Handler {
	return &StatusHandler{handler: h.handler.WithGroup(name), status: h.status}
}
