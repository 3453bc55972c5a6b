package lumen

import "context"

// Logger is the structured logging surface composed by Init.
// All methods are safe for concurrent use.
type Logger interface {
	// Debug logs a message at debug level.
	Debug(ctx context.Context, msg string, fields ...Field)

	// Info logs a message at info level.
	Info(ctx context.Context, msg string, fields ...Field)

	// Warn logs a message at warn level.
	Warn(ctx context.Context, msg string, fields ...Field)

	// Error logs a message at error level with an optional error.
	Error(ctx context.Context, msg string, err error, fields ...Field)

	// With returns a child logger with additional fields attached to all
	// subsequent entries.
	With(fields ...Field) Logger

	// Named returns a named sub-logger. The name is matched against
	// filter expression directives; nested names join with ".".
	Named(name string) Logger

	// Sync flushes buffered entries on the underlying sinks.
	Sync() error

	// SetLevel changes the floor level at runtime on every sink, replacing
	// the filter expression's per-logger floors.
	// Valid levels: debug, info, warn, error, fatal.
	SetLevel(level string)

	// GetLevel returns the current floor level as a string.
	GetLevel() string
}

// Field represents a structured logging field (key-value pair).
type Field struct {
	Key   string
	Value any
}

// F is a convenience constructor for Field.
//
//	logger.Info(ctx, "connected", lumen.F("host", "localhost"), lumen.F("port", 8080))
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a float64 field.
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field with the standard key "error".
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err}
}
