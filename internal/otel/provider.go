// Package otel sets up the OpenTelemetry log and metric pipelines of a
// run.
package otel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config holds OTel configuration
type Config struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration

	// LogWriter receives logs and metric snapshots as JSON.
	LogWriter io.Writer
	// Endpoint is an optional OTLP/HTTP collector for logs.
	Endpoint string
	Insecure bool
}

// Provider owns the log and meter providers of a run. A disabled
// provider holds neither.
type Provider struct {
	logProvider   *sdklog.LoggerProvider
	meterProvider *sdkmetric.MeterProvider
}

// New builds the providers described by cfg. When a LogWriter is set the
// meter provider is installed globally, so instruments created through
// otel.Meter are exported with the run's logs.
func New(cfg Config) (*Provider, error) {
	p := &Provider{}
	if !cfg.Enabled {
		return p, nil
	}
	if cfg.LogWriter == nil && cfg.Endpoint == "" {
		return nil, errors.New("OTel enabled but no log writer or endpoint configured")
	}

	ctx := context.Background()

	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		slog.Default().Warn("OpenTelemetry error", "error", err)
	}))

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if p.logProvider, err = newLoggerProvider(ctx, cfg, res); err != nil {
		return nil, err
	}

	if cfg.LogWriter != nil {
		if p.meterProvider, err = newMeterProvider(cfg, res); err != nil {
			return nil, err
		}
		otel.SetMeterProvider(p.meterProvider)
	}

	return p, nil
}

func newLoggerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	opts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}

	if cfg.LogWriter != nil {
		exporter, err := stdoutlog.New(
			stdoutlog.WithWriter(cfg.LogWriter),
			stdoutlog.WithPrettyPrint(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create file log exporter: %w", err)
		}
		opts = append(opts, sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter,
			sdklog.WithExportTimeout(cfg.BatchTimeout),
		)))
	}

	if cfg.Endpoint != "" {
		otlpOpts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			otlpOpts = append(otlpOpts, otlploghttp.WithInsecure())
		}
		exporter, err := otlploghttp.New(ctx, otlpOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
		}
		opts = append(opts, sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter,
			sdklog.WithExportTimeout(cfg.BatchTimeout),
		)))
	}

	return sdklog.NewLoggerProvider(opts...), nil
}

// newMeterProvider exports metric snapshots to the log writer every
// BatchTimeout and once more on shutdown.
func newMeterProvider(cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := stdoutmetric.New(
		stdoutmetric.WithWriter(cfg.LogWriter),
		stdoutmetric.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.BatchTimeout > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.BatchTimeout))
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
	), nil
}

// LoggerProvider returns the log provider for use with otelslog bridge.
// Returns nil if OTel is not enabled.
func (p *Provider) LoggerProvider() *sdklog.LoggerProvider {
	return p.logProvider
}

// Flush exports pending logs and metrics.
func (p *Provider) Flush(ctx context.Context) error {
	var errs []error
	if p.logProvider != nil {
		if err := p.logProvider.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("log flush failed: %w", err))
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metric flush failed: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Shutdown flushes and stops both providers. Call it once, when the run
// exits.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.logProvider != nil {
		if err := p.logProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("log shutdown failed: %w", err))
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metric shutdown failed: %w", err))
		}
	}
	return errors.Join(errs...)
}
