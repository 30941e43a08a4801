package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
)

// MessageWriter sends GELF messages. *gelf.Writer implements it.
type MessageWriter interface {
	WriteMessage(m *gelf.Message) error
}

// NewGraylogWriter dials the Graylog UDP input at addr.
func NewGraylogWriter(addr string) (*gelf.Writer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create graylog writer: %w", err)
	}
	w.Facility = "openscore"
	return w, nil
}

// GelfHandler turns slog records into GELF messages. Attributes become
// additional fields.
type GelfHandler struct {
	w     MessageWriter
	level slog.Leveler
	host  string

	attrs  map[string]any
	prefix string
}

// NewGelfHandler creates a handler writing records at or above level to w.
func NewGelfHandler(w MessageWriter, level slog.Leveler) *GelfHandler {
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	return &GelfHandler{w: w, level: level, host: host}
}

// Enabled reports whether the level reaches the configured minimum.
func (h *GelfHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes one GELF message per record.
func (h *GelfHandler) Handle(_ context.Context, r slog.Record) error {
	extra := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for k, v := range h.attrs {
		extra[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		addField(extra, h.prefix, a)
		return true
	})

	return h.w.WriteMessage(&gelf.Message{
		Version:  "1.1",
		Host:     h.host,
		Short:    r.Message,
		TimeUnix: float64(r.Time.UnixNano()) / float64(time.Second),
		Level:    syslogLevel(r.Level),
		Facility: "openscore",
		Extra:    extra,
	})
}

// WithAttrs returns a handler that adds attrs to every message.
func (h *GelfHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	for _, a := range attrs {
		addField(clone.attrs, clone.prefix, a)
	}
	return clone
}

// WithGroup returns a handler that prefixes later attributes with name.
func (h *GelfHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.prefix = h.prefix + name + "."
	return clone
}

func (h *GelfHandler) clone() *GelfHandler {
	attrs := make(map[string]any, len(h.attrs))
	for k, v := range h.attrs {
		attrs[k] = v
	}
	return &GelfHandler{w: h.w, level: h.level, host: h.host, attrs: attrs, prefix: h.prefix}
}

// addField flattens a into fields. GELF additional fields carry a leading
// underscore.
func addField(fields map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			addField(fields, groupPrefix, ga)
		}
		return
	}

	key := "_" + prefix + a.Key
	switch a.Value.Kind() {
	case slog.KindInt64:
		fields[key] = a.Value.Int64()
	case slog.KindUint64:
		fields[key] = a.Value.Uint64()
	case slog.KindFloat64:
		fields[key] = a.Value.Float64()
	case slog.KindBool:
		fields[key] = a.Value.Bool()
	default:
		fields[key] = a.Value.String()
	}
}

// syslogLevel maps slog levels onto the syslog severities GELF uses.
func syslogLevel(l slog.Level) int32 {
	switch {
	case l >= LevelCritical:
		return 2
	case l >= slog.LevelError:
		return 3
	case l >= slog.LevelWarn:
		return 4
	case l >= slog.LevelInfo:
		return 6
	default:
		return 7
	}
}
