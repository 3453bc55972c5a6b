package lumen

import (
	"context"
	"sync"
)

var (
	globalMu sync.RWMutex
	global   *Guard
)

// setGlobal is called by Init; the most recent Init wins the slot.
func setGlobal(g *Guard) {
	globalMu.Lock()
	global = g
	globalMu.Unlock()
}

// SetGlobal replaces the global Guard explicitly, for callers that run
// multiple Init calls and want a specific one to back the package-level
// helpers.
func SetGlobal(g *Guard) {
	setGlobal(g)
}

// L returns the global Guard. It panics when Init has not run.
func L() *Guard {
	globalMu.RLock()
	g := global
	globalMu.RUnlock()
	if g == nil {
		panic("lumen: global not set, call Init first")
	}
	return g
}

func getGlobal() *Guard {
	globalMu.RLock()
	g := global
	globalMu.RUnlock()
	if g == nil {
		// Uninitialized fallback: a plain console composition.
		return &Guard{logger: buildLogger(Default(), DefaultFilter(""), nil, nil)}
	}
	return g
}

// Debug logs at debug level using the global logger.
func Debug(ctx context.Context, msg string, fields ...Field) {
	getGlobal().logger.Debug(ctx, msg, fields...)
}

// Info logs at info level using the global logger.
func Info(ctx context.Context, msg string, fields ...Field) {
	getGlobal().logger.Info(ctx, msg, fields...)
}

// Warn logs at warn level using the global logger.
func Warn(ctx context.Context, msg string, fields ...Field) {
	getGlobal().logger.Warn(ctx, msg, fields...)
}

// Error logs at error level using the global logger.
func Error(ctx context.Context, msg string, err error, fields ...Field) {
	getGlobal().logger.Error(ctx, msg, err, fields...)
}

// Named returns a named child of the global logger.
func Named(name string) Logger {
	return getGlobal().logger.Named(name)
}

// GetTracer returns a named tracer from the global Guard.
func GetTracer(name string) Tracer {
	return getGlobal().Tracer(name)
}

// Sync flushes the global logger. A no-op when Init has not run.
func Sync() error {
	globalMu.RLock()
	g := global
	globalMu.RUnlock()
	if g == nil {
		return nil
	}
	return g.Sync()
}
