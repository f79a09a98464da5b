package logging

import (
	"context"
	"io"
	"log/slog"
)

type contextKey string

const requestIDKey = contextKey("requestID")

// RequestIDFromContext returns the request id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)

	return id, ok
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// TracingHandler adds the request id found in the context to every record.
type TracingHandler struct {
	h slog.Handler
}

var _ slog.Handler = (*TracingHandler)(nil)

func NewTracingHandler(h slog.Handler) *TracingHandler {
	return &TracingHandler{h: h}
}

func (h *TracingHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := RequestIDFromContext(ctx); ok {
		r.AddAttrs(slog.Group("request", slog.String("id", id)))
	}

	return h.h.Handle(ctx, r)
}

func (h *TracingHandler) WithAttrs(attrs []slog.Attr) Handler {
	return NewTracingHandler(h.h.WithAttrs(attrs))
}

func (h *TracingHandler) WithGroup(name string) Handler {
	return NewTracingHandler(h.h.WithGroup(name))
}

func (h *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
