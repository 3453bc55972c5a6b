package lumen

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Mode selects which sink composition Init activates.
type Mode int

const (
	// ModeConsole logs to the console only. This is the default.
	ModeConsole Mode = iota
	// ModeFile logs to a file only.
	ModeFile
	// ModeConsoleAndFile logs to both the console and a file.
	ModeConsoleAndFile
	// ModeLiveExport streams logs and traces to an OpenTelemetry collector.
	// Console output stays active in this mode.
	ModeLiveExport
)

// String returns the textual form used in env vars and config files.
func (m Mode) String() string {
	switch m {
	case ModeFile:
		return "file"
	case ModeConsoleAndFile:
		return "console+file"
	case ModeLiveExport:
		return "live"
	default:
		return "console"
	}
}

// ParseMode converts a textual mode to a Mode. Unknown values return
// ModeConsole with an error.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "console":
		return ModeConsole, nil
	case "file":
		return ModeFile, nil
	case "console+file", "console-and-file", "both":
		return ModeConsoleAndFile, nil
	case "live", "live-export", "collector":
		return ModeLiveExport, nil
	default:
		return ModeConsole, fmt.Errorf("unknown mode %q", s)
	}
}

// SetValue implements cleanenv.Setter so Mode can be read from env vars.
func (m *Mode) SetValue(s string) error {
	mode, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler for yaml/json configs.
func (m *Mode) UnmarshalText(text []byte) error {
	return m.SetValue(string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Config holds the complete sink composition configuration.
// The record is a plain value: Init copies what it needs and never
// retains it. Any combination of field values is valid; fields for
// sinks the mode does not select are ignored.
type Config struct {
	// Mode selects the sink composition.
	// Default: ModeConsole
	Mode Mode `yaml:"mode" json:"mode" env:"LUMEN_MODE"`

	// Filter is the verbosity expression: a default level optionally
	// followed by per-component overrides, e.g. "info,router=debug".
	// Empty falls back to the LUMEN_FILTER env var, then to "info".
	Filter string `yaml:"filter" json:"filter" env:"LUMEN_FILTER"`

	// JSON switches console and file output to structured JSON encoding.
	// Default: false (human-readable console encoding)
	JSON bool `yaml:"json" json:"json" env:"LUMEN_JSON"`

	// LogDir is the directory for file output. Each run writes a fresh
	// timestamped file inside it. Ignored unless the mode includes file
	// output.
	// Default: "./logs"
	LogDir string `yaml:"log_dir" json:"log_dir" env:"LUMEN_LOG_DIR"`

	// AnsiConsole enables ANSI color codes on the console sink.
	// Default: true
	AnsiConsole bool `yaml:"ansi_console" json:"ansi_console" env:"LUMEN_ANSI_CONSOLE"`

	// AnsiFile enables ANSI color codes in the file sink. Independent of
	// AnsiConsole.
	// Default: false
	AnsiFile bool `yaml:"ansi_file" json:"ansi_file" env:"LUMEN_ANSI_FILE"`

	// LossyFile drops file writes instead of blocking when the writer's
	// buffer is saturated. Dropped lines are counted and reported when
	// the Guard closes.
	// Default: true
	LossyFile bool `yaml:"lossy_file" json:"lossy_file" env:"LUMEN_LOSSY_FILE"`

	// Service identifies this process in live export resource attributes.
	Service string `yaml:"service" json:"service" env:"LUMEN_SERVICE"`

	// Version is the application version, attached alongside Service.
	Version string `yaml:"version" json:"version" env:"LUMEN_VERSION"`

	// Console holds console sink settings.
	Console ConsoleConfig `yaml:"console" json:"console"`

	// File holds rotation settings for the file sink.
	File FileConfig `yaml:"file" json:"file"`

	// Collector holds live-export settings, used only in ModeLiveExport.
	Collector CollectorConfig `yaml:"collector" json:"collector"`
}

// ConsoleConfig configures the console sink.
type ConsoleConfig struct {
	// ErrorsToStderr sends warn and above to stderr, the rest to stdout.
	// Default: false (everything to stdout)
	ErrorsToStderr bool `yaml:"errors_to_stderr" json:"errors_to_stderr" env:"LUMEN_ERRORS_TO_STDERR"`
}

// FileConfig configures rotation of the file sink. Rotation itself is
// delegated to lumberjack.
type FileConfig struct {
	// MaxSizeMB is the maximum size in MB before rotation.
	// Default: 100
	MaxSizeMB int `yaml:"max_size_mb" json:"max_size_mb" env:"LUMEN_FILE_MAX_SIZE_MB"`

	// MaxAgeDays is the maximum age in days to retain rotated files.
	// Default: 7
	MaxAgeDays int `yaml:"max_age_days" json:"max_age_days" env:"LUMEN_FILE_MAX_AGE_DAYS"`

	// MaxBackups is the maximum number of rotated files to keep.
	// Default: 5
	MaxBackups int `yaml:"max_backups" json:"max_backups" env:"LUMEN_FILE_MAX_BACKUPS"`

	// Compress gzips rotated files.
	// Default: false
	Compress bool `yaml:"compress" json:"compress" env:"LUMEN_FILE_COMPRESS"`
}

// CollectorConfig configures live export to an OpenTelemetry collector.
type CollectorConfig struct {
	// Endpoint is the collector address.
	// Examples: "localhost:4317" (gRPC), "localhost:4318" (HTTP)
	Endpoint string `yaml:"endpoint" json:"endpoint" env:"LUMEN_COLLECTOR_ENDPOINT"`

	// Protocol is "grpc" or "http".
	// Default: "grpc"
	Protocol string `yaml:"protocol" json:"protocol" env:"LUMEN_COLLECTOR_PROTOCOL"`

	// Insecure disables TLS for the collector connection.
	Insecure bool `yaml:"insecure" json:"insecure" env:"LUMEN_COLLECTOR_INSECURE"`

	// Headers are additional headers sent to the collector (auth tokens).
	Headers map[string]string `yaml:"headers" json:"headers"`

	// Timeout is the per-export timeout.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" json:"timeout" env:"LUMEN_COLLECTOR_TIMEOUT"`

	// BatchSize is the number of records per export batch.
	// Default: 512
	BatchSize int `yaml:"batch_size" json:"batch_size" env:"LUMEN_COLLECTOR_BATCH_SIZE"`

	// ExportInterval is how often batched records are exported.
	// Default: 5s
	ExportInterval time.Duration `yaml:"export_interval" json:"export_interval" env:"LUMEN_COLLECTOR_EXPORT_INTERVAL"`

	// Attributes are extra resource attributes attached to exported data.
	Attributes map[string]string `yaml:"attributes" json:"attributes"`

	// WaitForCollector blocks Init until a TCP connection to the endpoint
	// succeeds, retrying once per second up to WaitTimeout. Useful when
	// the collector container starts alongside the process.
	WaitForCollector bool `yaml:"wait_for_collector" json:"wait_for_collector" env:"LUMEN_COLLECTOR_WAIT"`

	// WaitTimeout bounds WaitForCollector.
	// Default: 30s
	WaitTimeout time.Duration `yaml:"wait_timeout" json:"wait_timeout" env:"LUMEN_COLLECTOR_WAIT_TIMEOUT"`

	// Metrics also stands up an OTLP meter provider against the same
	// collector.
	Metrics bool `yaml:"metrics" json:"metrics" env:"LUMEN_COLLECTOR_METRICS"`
}

// Default returns a Config with the documented defaults: console-only
// output with colors, lossy file writes, "./logs" as the file directory.
func Default() Config {
	return Config{
		Mode:        ModeConsole,
		LogDir:      "./logs",
		AnsiConsole: true,
		AnsiFile:    false,
		LossyFile:   true,
		File: FileConfig{
			MaxSizeMB:  100,
			MaxAgeDays: 7,
			MaxBackups: 5,
		},
		Collector: CollectorConfig{
			Protocol:       "grpc",
			Timeout:        10 * time.Second,
			BatchSize:      512,
			ExportInterval: 5 * time.Second,
			WaitTimeout:    30 * time.Second,
		},
	}
}

// FromEnv returns Default overlaid with LUMEN_* environment variables.
func FromEnv() (Config, error) {
	cfg := Default()
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read env config: %w", err)
	}
	return cfg, nil
}

// WithMode returns a copy of the config with the specified mode.
func (c Config) WithMode(mode Mode) Config {
	c.Mode = mode
	return c
}

// WithFilter returns a copy of the config with the specified filter
// expression.
func (c Config) WithFilter(expr string) Config {
	c.Filter = expr
	return c
}

// WithLogDir returns a copy of the config with file output directed at dir.
// It does not change the mode.
func (c Config) WithLogDir(dir string) Config {
	c.LogDir = dir
	return c
}

// WithJSON returns a copy of the config with structured JSON encoding.
func (c Config) WithJSON() Config {
	c.JSON = true
	return c
}

// WithService returns a copy of the config with the service identity used
// in live export.
func (c Config) WithService(name, version string) Config {
	c.Service = name
	c.Version = version
	return c
}

// WithCollector returns a copy of the config in ModeLiveExport pointed at
// the given collector endpoint.
func (c Config) WithCollector(endpoint string) Config {
	c.Mode = ModeLiveExport
	c.Collector.Endpoint = endpoint
	return c
}
