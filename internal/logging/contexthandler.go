package logging

import (
	"context"
	"log/slog"
)

// ContextProvider returns attributes describing where the program is at
// the time of the call, such as the current round of a match.
type ContextProvider func() []slog.Attr

// ContextHandler appends the provider's attributes to every record. A
// record attribute wins over a provider attribute with the same key.
type ContextHandler struct {
	inner    slog.Handler
	provider ContextProvider
}

func NewContextHandler(inner slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{inner: inner, provider: provider}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider == nil {
		return h.inner.Handle(ctx, r)
	}
	attrs := h.provider()
	if len(attrs) == 0 {
		return h.inner.Handle(ctx, r)
	}

	seen := make(map[string]bool, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		seen[a.Key] = true
		return true
	})
	for _, a := range attrs {
		if !seen[a.Key] {
			r.AddAttrs(a)
		}
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewContextHandler(h.inner.WithAttrs(attrs), h.provider)
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return NewContextHandler(h.inner.WithGroup(name), h.provider)
}
