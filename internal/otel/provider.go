// Package otel stands up the OpenTelemetry providers behind live export:
// logs via the otelzap bridge, traces, and optionally metrics. All three
// share one Config and one resource identity.
package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config carries collector connection settings shared by the log, trace,
// and metric providers.
type Config struct {
	Endpoint       string
	Protocol       string // "grpc" or "http"
	Insecure       bool
	Timeout        time.Duration
	Headers        map[string]string
	Attributes     map[string]string
	BatchSize      int
	ExportInterval time.Duration
}

func (c Config) batchSize() int {
	if c.BatchSize <= 0 {
		return 512
	}
	return c.BatchSize
}

func (c Config) exportInterval() time.Duration {
	if c.ExportInterval <= 0 {
		return 5 * time.Second
	}
	return c.ExportInterval
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 10 * time.Second
	}
	return c.Timeout
}

// newResource builds the shared resource identity.
//
// Explicit detectors instead of resource.Merge(resource.Default(), ...):
// merging mixes the SDK's internal schema URL with our semconv import and
// fails on version skew.
func newResource(ctx context.Context, cfg Config, serviceName, version string) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(version),
	}
	for k, v := range cfg.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}

	return resource.New(ctx,
		resource.WithHost(),
		resource.WithOS(),
		resource.WithProcess(),
		resource.WithAttributes(attrs...),
	)
}

// LogProvider manages the OpenTelemetry log provider.
type LogProvider struct {
	provider *sdklog.LoggerProvider
}

// LoggerProvider returns the underlying sdklog.LoggerProvider for the
// otelzap bridge.
func (p *LogProvider) LoggerProvider() *sdklog.LoggerProvider {
	if p == nil {
		return nil
	}
	return p.provider
}

// Shutdown flushes and stops the log provider.
func (p *LogProvider) Shutdown(ctx context.Context) error {
	if p == nil || p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}

// SetupLogs initializes OTLP log export and installs the provider globally.
func SetupLogs(cfg Config, serviceName, version string) (*LogProvider, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}

	ctx := context.Background()

	res, err := newResource(ctx, cfg, serviceName, version)
	if err != nil {
		return nil, fmt.Errorf("create log resource: %w", err)
	}

	var exporter sdklog.Exporter
	switch cfg.Protocol {
	case "http":
		exporter, err = newHTTPLogExporter(ctx, cfg)
	default:
		exporter, err = newGRPCLogExporter(ctx, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("create log exporter: %w", err)
	}

	processor := sdklog.NewBatchProcessor(
		exporter,
		sdklog.WithMaxQueueSize(cfg.batchSize()*2),
		sdklog.WithExportMaxBatchSize(cfg.batchSize()),
		sdklog.WithExportInterval(cfg.exportInterval()),
	)

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(processor),
	)

	global.SetLoggerProvider(provider)

	return &LogProvider{provider: provider}, nil
}

func newGRPCLogExporter(ctx context.Context, cfg Config) (sdklog.Exporter, error) {
	opts := []otlploggrpc.Option{
		otlploggrpc.WithEndpoint(cfg.Endpoint),
		otlploggrpc.WithTimeout(cfg.timeout()),
	}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
		opts = append(opts, otlploggrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlploggrpc.WithHeaders(cfg.Headers))
	}
	return otlploggrpc.New(ctx, opts...)
}

func newHTTPLogExporter(ctx context.Context, cfg Config) (sdklog.Exporter, error) {
	opts := []otlploghttp.Option{
		otlploghttp.WithEndpoint(cfg.Endpoint),
		otlploghttp.WithTimeout(cfg.timeout()),
	}
	if cfg.Insecure {
		opts = append(opts, otlploghttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlploghttp.WithHeaders(cfg.Headers))
	}
	return otlploghttp.New(ctx, opts...)
}
