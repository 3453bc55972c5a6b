package lumen

import (
	"context"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ctxSentinelKey carries the caller's context into the otelzap bridge, which
// extracts LogRecord.TraceID/SpanID from it. The sentinel spelling avoids
// collisions with user field names; console and file cores strip it.
const ctxSentinelKey = "__lumen_ctx__"

// zapLogger implements Logger using Uber's Zap.
type zapLogger struct {
	zap  *zap.Logger
	gate *levelGate
}

// buildLogger constructs the zapLogger for the configured mode.
//
// Field filtering keeps trace correlation readable:
//   - Console/File: strip the ctx sentinel (renders as an ugly {}), keep
//     trace_id/span_id strings
//   - Collector: strip trace_id/span_id strings (the LogRecord already has
//     them), keep the sentinel so the otelzap bridge can use it
func buildLogger(cfg Config, filter Filter, fileWS zapcore.WriteSyncer, otelCore zapcore.Core) *zapLogger {
	gate := newLevelGate(filter)
	cores := make([]zapcore.Core, 0, 4)

	consoleOn := cfg.Mode == ModeConsole || cfg.Mode == ModeConsoleAndFile || cfg.Mode == ModeLiveExport
	fileOn := (cfg.Mode == ModeFile || cfg.Mode == ModeConsoleAndFile) && fileWS != nil

	if consoleOn {
		for _, c := range buildConsoleCores(cfg) {
			cores = append(cores, newFilterCore(newStripCore(c, ctxSentinelKey), gate))
		}
	}

	if fileOn {
		fileCore := zapcore.NewCore(buildFileEncoder(cfg), fileWS, zapcore.DebugLevel)
		cores = append(cores, newFilterCore(newStripCore(fileCore, ctxSentinelKey), gate))
	}

	if otelCore != nil {
		cores = append(cores, newFilterCore(newStripCore(otelCore, "trace_id", "span_id"), gate))
	}

	var core zapcore.Core
	switch len(cores) {
	case 0:
		core = zapcore.NewNopCore()
	case 1:
		core = cores[0]
	default:
		core = zapcore.NewTee(cores...)
	}

	opts := []zap.Option{}
	if cfg.Service != "" {
		opts = append(opts, zap.Fields(zap.String("service", cfg.Service)))
	}
	if cfg.Version != "" {
		opts = append(opts, zap.Fields(zap.String("version", cfg.Version)))
	}

	return &zapLogger{
		zap:  zap.New(core, opts...),
		gate: gate,
	}
}

// buildConsoleCores creates the console cores. ErrorsToStderr splits the
// stream: below warn to stdout, warn and above to stderr.
func buildConsoleCores(cfg Config) []zapcore.Core {
	encoder := buildConsoleEncoder(cfg)

	if cfg.Console.ErrorsToStderr {
		stdoutLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl < zapcore.WarnLevel
		})
		stderrLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zapcore.WarnLevel
		})

		return []zapcore.Core{
			zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), stdoutLevel),
			zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), stderrLevel),
		}
	}

	return []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zapcore.DebugLevel),
	}
}

func buildConsoleEncoder(cfg Config) zapcore.Encoder {
	if cfg.JSON {
		return zapcore.NewJSONEncoder(jsonEncoderConfig())
	}
	return newTextEncoder(cfg.AnsiConsole)
}

func buildFileEncoder(cfg Config) zapcore.Encoder {
	if cfg.JSON {
		return zapcore.NewJSONEncoder(jsonEncoderConfig())
	}
	return newTextEncoder(cfg.AnsiFile)
}

// newTextEncoder builds the human-readable encoder. The ansi flag picks
// colored level names; console and file sinks pass it independently.
func newTextEncoder(ansi bool) zapcore.Encoder {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	if ansi {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	return zapcore.NewConsoleEncoder(encoderCfg)
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.MessageKey = "msg"
	encoderCfg.LevelKey = "level"
	return encoderCfg
}

// stripCore drops bookkeeping fields a sink must not render. Console and
// file cores drop the ctx sentinel; the collector core drops the
// trace_id/span_id strings its LogRecord already carries.
type stripCore struct {
	zapcore.Core
	drop map[string]struct{}
}

func newStripCore(core zapcore.Core, keys ...string) zapcore.Core {
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}
	return &stripCore{Core: core, drop: drop}
}

func (c *stripCore) keep(fields []zapcore.Field) []zapcore.Field {
	kept := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if _, skip := c.drop[f.Key]; !skip {
			kept = append(kept, f)
		}
	}
	return kept
}

func (c *stripCore) With(fields []zapcore.Field) zapcore.Core {
	return &stripCore{Core: c.Core.With(c.keep(fields)), drop: c.drop}
}

func (c *stripCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *stripCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(entry, c.keep(fields))
}

// parseLevel converts a string level to zapcore.Level.
func parseLevel(level string) zapcore.Level {
	if lvl, ok := lookupLevel(strings.ToLower(level)); ok {
		return lvl
	}
	return zapcore.InfoLevel
}

// --- Logger interface implementation ---

type zapLogFunc func(msg string, fields ...zap.Field)

// logWithFields converts fields, extracts trace context, and appends the ctx
// sentinel for the collector bridge before dispatching to the zap method.
func (l *zapLogger) logWithFields(ctx context.Context, logFn zapLogFunc, msg string, fields []Field) {
	zapFields := toZapFields(fields)

	// context.Background() and context.TODO() never carry trace info.
	if ctx != nil && ctx != context.Background() && ctx != context.TODO() {
		zapFields = append(zapFields, extractContextZapFields(ctx)...)
		zapFields = append(zapFields, zap.Reflect(ctxSentinelKey, ctx))
	}

	logFn(msg, zapFields...)
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	if !l.gate.enabled(zapcore.DebugLevel) {
		return
	}
	l.logWithFields(ctx, l.zap.Debug, msg, fields)
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	if !l.gate.enabled(zapcore.InfoLevel) {
		return
	}
	l.logWithFields(ctx, l.zap.Info, msg, fields)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	if !l.gate.enabled(zapcore.WarnLevel) {
		return
	}
	l.logWithFields(ctx, l.zap.Warn, msg, fields)
}

func (l *zapLogger) Error(ctx context.Context, msg string, err error, fields ...Field) {
	if !l.gate.enabled(zapcore.ErrorLevel) {
		return
	}
	if err != nil {
		fields = append(fields, Err(err))
	}
	l.logWithFields(ctx, l.zap.Error, msg, fields)
}

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{
		zap:  l.zap.With(toZapFields(fields)...),
		gate: l.gate,
	}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{
		zap:  l.zap.Named(name),
		gate: l.gate,
	}
}

func (l *zapLogger) Sync() error {
	return l.zap.Sync()
}

// SetLevel changes the floor level at runtime on every sink. The level
// replaces the filter expression's per-logger floors until the next call.
// Safe to call from multiple goroutines.
func (l *zapLogger) SetLevel(level string) {
	l.gate.set(parseLevel(level))
}

// GetLevel returns the current floor level.
func (l *zapLogger) GetLevel() string {
	return l.gate.level().String()
}

// --- Field conversion ---

// toZapFields converts lumen fields, picking the typed zap constructor for
// common value types.
func toZapFields(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	zapFields := make([]zap.Field, 0, len(fields)+4)
	for _, f := range fields {
		zapFields = append(zapFields, convertField(f))
	}
	return zapFields
}

func convertField(f Field) zap.Field {
	switch v := f.Value.(type) {
	case string:
		return zap.String(f.Key, v)
	case int:
		return zap.Int(f.Key, v)
	case int64:
		return zap.Int64(f.Key, v)
	case uint64:
		return zap.Uint64(f.Key, v)
	case float64:
		return zap.Float64(f.Key, v)
	case bool:
		return zap.Bool(f.Key, v)
	case time.Duration:
		return zap.Duration(f.Key, v)
	case error:
		return zap.NamedError(f.Key, v)
	default:
		return zap.Any(f.Key, f.Value)
	}
}
