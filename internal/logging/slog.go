package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// LevelCritical sits above error for failures that abort the run.
const LevelCritical = slog.Level(12)

// Sinks are the optional outputs besides the console.
type Sinks struct {
	// File receives text logs instead of the console when set.
	File io.Writer
	// Provider enables the OTel bridge.
	Provider *sdklog.LoggerProvider
	// Graylog receives GELF messages.
	Graylog MessageWriter
}

// SlogManager manages slog-based logging with optional OTel integration.
type SlogManager struct {
	logger *slog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider

	console io.Writer
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{console: os.Stderr}
}

// ParseLevel converts a string log level to slog.Level. WARNING and
// CRITICAL are accepted for compatibility with older command lines.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	case "CRITICAL":
		return LevelCritical
	default:
		return slog.LevelInfo
	}
}

// Setup initializes the logging system. Logs go to the file sink if one
// is given, otherwise to the console.
func (m *SlogManager) Setup(level string, sinks Sinks) {
	lvl := ParseLevel(level)
	m.logProvider = sinks.Provider

	// Common handler options with RFC3339 time formatting
	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				if l, ok := a.Value.Any().(slog.Level); ok && l >= LevelCritical {
					a.Value = slog.StringValue("CRITICAL")
				}
			}
			return a
		},
	}

	var handlers []slog.Handler

	if sinks.File != nil {
		handlers = append(handlers, slog.NewTextHandler(sinks.File, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(m.console, handlerOpts))
	}

	if sinks.Provider != nil {
		handlers = append(handlers, otelslog.NewHandler("openscore", otelslog.WithLoggerProvider(sinks.Provider)))
	}

	if sinks.Graylog != nil {
		handlers = append(handlers, NewGelfHandler(sinks.Graylog, lvl))
	}

	m.logger = slog.New(NewMultiHandler(handlers...))
	m.logger.Debug("Logging initialized", "level", level)
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// WithContext returns a logger that appends the provider's attributes to
// every record.
func (m *SlogManager) WithContext(provider ContextProvider) *slog.Logger {
	return slog.New(NewContextHandler(m.Logger().Handler(), provider))
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}
