// Package telemetry wires OpenTelemetry traces, metrics and logs for the
// catalog grid service.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/catalogsync/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// ServiceVersion is reported on every exported signal
var ServiceVersion = "dev"

// Config holds telemetry configuration.
type Config struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Config
	ExportInterval time.Duration
}

// FromConfig maps the application telemetry section
func FromConfig(cfg config.TelemetryConfig) (Config, MetricsConfig) {
	base := Config{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}
	metrics := MetricsConfig{Config: base, ExportInterval: cfg.MetricsInterval}
	metrics.Enabled = cfg.Enabled && cfg.MetricsEnabled
	return base, metrics
}

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

const shutdownTimeout = 10 * time.Second

// pipeline is the lifecycle shared by the trace, metric and log providers.
// A disabled pipeline has no SDK provider behind it.
type pipeline struct {
	signal   string
	logger   *zap.Logger
	enabled  bool
	shutdown func(context.Context) error
	flush    func(context.Context) error
}

func disabledPipeline(signal string, logger *zap.Logger) pipeline {
	logger.Info("Telemetry signal disabled, using no-op provider", zap.String("signal", signal))
	return pipeline{signal: signal, logger: logger}
}

func (p *pipeline) IsEnabled() bool {
	return p.enabled
}

// Shutdown flushes and stops the pipeline, bounded by shutdownTimeout
func (p *pipeline) Shutdown(ctx context.Context) error {
	if !p.enabled {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := p.shutdown(ctx); err != nil {
		p.logger.Error("Telemetry shutdown failed", zap.String("signal", p.signal), zap.Error(err))
		return fmt.Errorf("failed to shutdown %s pipeline: %w", p.signal, err)
	}
	p.logger.Info("Telemetry pipeline stopped", zap.String("signal", p.signal))
	return nil
}

// ForceFlush exports whatever is buffered
func (p *pipeline) ForceFlush(ctx context.Context) error {
	if !p.enabled || p.flush == nil {
		return nil
	}
	return p.flush(ctx)
}

func (p *pipeline) started(cfg Config, fields ...zap.Field) {
	p.logger.Info("Telemetry pipeline started", append([]zap.Field{
		zap.String("signal", p.signal),
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.String("service_name", cfg.ServiceName),
	}, fields...)...)
}
