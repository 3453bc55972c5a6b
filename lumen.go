package lumen

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	internalotel "github.com/lumenlabs/lumen/internal/otel"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap/zapcore"
)

// Warning represents a non-fatal initialization issue. Init returns warnings
// instead of failing when the collector cannot be reached; logging degrades
// to the console composition.
type Warning struct {
	Component string // "collector", "logs", "traces", "metrics"
	Err       error
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s: %v", w.Component, w.Err)
}

// Guard owns every background resource the chosen sink composition created:
// the file writer's worker goroutine and the OTLP providers. While the Guard
// is alive, buffered output is eventually delivered. Close flushes all
// pending output synchronously before it returns; closing early stops
// guaranteed delivery of subsequent output.
//
// The Guard also carries the composed Logger and Tracer so downstream code
// can thread them explicitly instead of reaching for the process global.
type Guard struct {
	logger         *zapLogger
	worker         *fileWorker
	logProvider    *internalotel.LogProvider
	tracerProvider *internalotel.TracerProvider
	meterProvider  *internalotel.MeterProvider

	closeOnce sync.Once
	closeErr  error
}

// Init interprets the configuration record and activates the corresponding
// sink composition:
//
//   - ModeConsole: console core(s) only
//   - ModeFile: file core behind a non-blocking worker
//   - ModeConsoleAndFile: tee of both
//   - ModeLiveExport: console core(s) plus OTLP log and trace export
//
// Init always returns a working Guard. Collector problems come back as
// warnings with console output as the fallback; error is reserved for
// configuration that cannot produce any composition.
//
// Init installs the composed logger as the process global for the package
// level helpers. Calling Init more than once returns independent Guards;
// the most recent call wins the global slot.
func Init(cfg Config) (*Guard, []Warning, error) {
	var warnings []Warning
	filter := DefaultFilter(cfg.Filter)
	g := &Guard{}

	var fileWS zapcore.WriteSyncer
	if cfg.Mode == ModeFile || cfg.Mode == ModeConsoleAndFile {
		if out := newFileWriter(cfg); out != nil {
			g.worker = newFileWorker(out, cfg.LossyFile, defaultQueueLen)
			fileWS = g.worker
		} else {
			warnings = append(warnings, Warning{
				Component: "file",
				Err:       errors.New("file output selected but no log directory configured"),
			})
		}
	}

	var otelCore zapcore.Core
	if cfg.Mode == ModeLiveExport {
		core, ws := g.setupLiveExport(cfg)
		warnings = append(warnings, ws...)
		otelCore = core
	}

	g.logger = buildLogger(cfg, filter, fileWS, otelCore)
	setGlobal(g)

	return g, warnings, nil
}

// setupLiveExport stands up the OTLP providers and returns the otelzap
// bridge core. Failures are reported as warnings; a nil core means console
// output only.
func (g *Guard) setupLiveExport(cfg Config) (zapcore.Core, []Warning) {
	var warnings []Warning

	if cfg.Collector.Endpoint == "" {
		return nil, []Warning{{
			Component: "collector",
			Err:       errors.New("live export selected but no collector endpoint configured"),
		}}
	}

	if cfg.Collector.WaitForCollector {
		if err := internalotel.WaitForEndpoint(cfg.Collector.Endpoint, cfg.Collector.WaitTimeout); err != nil {
			return nil, []Warning{{
				Component: "collector",
				Err:       fmt.Errorf("%w (falling back to console output)", err),
			}}
		}
	}

	ocfg := internalotel.Config{
		Endpoint:       cfg.Collector.Endpoint,
		Protocol:       cfg.Collector.Protocol,
		Insecure:       cfg.Collector.Insecure,
		Timeout:        cfg.Collector.Timeout,
		Headers:        cfg.Collector.Headers,
		Attributes:     cfg.Collector.Attributes,
		BatchSize:      cfg.Collector.BatchSize,
		ExportInterval: cfg.Collector.ExportInterval,
	}

	service := cfg.Service
	if service == "" {
		service = "lumen"
	}

	var otelCore zapcore.Core
	logProvider, err := internalotel.SetupLogs(ocfg, service, cfg.Version)
	if err != nil {
		warnings = append(warnings, Warning{
			Component: "logs",
			Err:       fmt.Errorf("log export unavailable: %w (console only)", err),
		})
	} else if logProvider.LoggerProvider() != nil {
		g.logProvider = logProvider
		otelCore = otelzap.NewCore(service,
			otelzap.WithLoggerProvider(logProvider.LoggerProvider()),
		)
	}

	tracerProvider, err := internalotel.SetupTraces(ocfg, service, cfg.Version)
	if err != nil {
		warnings = append(warnings, Warning{
			Component: "traces",
			Err:       fmt.Errorf("trace export unavailable: %w", err),
		})
	} else {
		g.tracerProvider = tracerProvider
	}

	if cfg.Collector.Metrics {
		meterProvider, err := internalotel.SetupMetrics(ocfg, service, cfg.Version)
		if err != nil {
			warnings = append(warnings, Warning{
				Component: "metrics",
				Err:       fmt.Errorf("metric export unavailable: %w", err),
			})
		} else {
			g.meterProvider = meterProvider
		}
	}

	return otelCore, warnings
}

// Logger returns the composed logger.
func (g *Guard) Logger() Logger {
	return g.logger
}

// Tracer returns a named tracer for creating spans. Without live export it
// returns a no-op tracer.
func (g *Guard) Tracer(name string) Tracer {
	if g.tracerProvider == nil {
		return noopTracer{}
	}
	return newOtelTracer(name)
}

// Meter returns a named meter. It is a no-op unless Collector.Metrics was
// set in ModeLiveExport.
func (g *Guard) Meter(name string) metric.Meter {
	return g.meterProvider.Meter(name)
}

// Sync flushes buffered log entries without releasing any resource.
func (g *Guard) Sync() error {
	return g.logger.Sync()
}

// Close flushes all pending output and releases background resources: zap
// buffers first, then the file worker (drained and closed), then the OTLP
// providers. Idempotent; later calls return the first result.
func (g *Guard) Close(ctx context.Context) error {
	g.closeOnce.Do(func() {
		var firstErr error

		// Stdout/stderr sync errors are expected on most platforms.
		_ = g.logger.Sync()

		if g.worker != nil {
			if err := g.worker.Stop(); err != nil {
				firstErr = err
			}
			if n := g.worker.Dropped(); n > 0 {
				log.Printf("[lumen] %d log lines dropped by lossy file writer", n)
			}
		}

		if err := g.logProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := g.tracerProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := g.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}

		g.closeErr = firstErr
	})
	return g.closeErr
}
