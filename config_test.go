package lumen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ModeConsole, cfg.Mode)
	assert.Equal(t, "./logs", cfg.LogDir)
	assert.True(t, cfg.AnsiConsole)
	assert.False(t, cfg.AnsiFile)
	assert.True(t, cfg.LossyFile)
	assert.False(t, cfg.JSON)
	assert.Equal(t, 100, cfg.File.MaxSizeMB)
	assert.Equal(t, "grpc", cfg.Collector.Protocol)
	assert.Equal(t, 512, cfg.Collector.BatchSize)
	assert.Equal(t, 10*time.Second, cfg.Collector.Timeout)
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"":                 ModeConsole,
		"console":          ModeConsole,
		"file":             ModeFile,
		"console+file":     ModeConsoleAndFile,
		"both":             ModeConsoleAndFile,
		"console-and-file": ModeConsoleAndFile,
		"live":             ModeLiveExport,
		"collector":        ModeLiveExport,
		"CONSOLE":          ModeConsole,
		" file ":           ModeFile,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := ParseMode("bogus")
	assert.Error(t, err)
}

func TestMode_RoundTrip(t *testing.T) {
	for _, m := range []Mode{ModeConsole, ModeFile, ModeConsoleAndFile, ModeLiveExport} {
		parsed, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
}

func TestMode_UnmarshalText(t *testing.T) {
	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("console+file")))
	assert.Equal(t, ModeConsoleAndFile, m)

	assert.Error(t, m.UnmarshalText([]byte("nope")))
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LUMEN_MODE", "console+file")
	t.Setenv("LUMEN_FILTER", "warn,router=debug")
	t.Setenv("LUMEN_JSON", "true")
	t.Setenv("LUMEN_LOG_DIR", "/var/log/app")
	t.Setenv("LUMEN_ANSI_CONSOLE", "false")
	t.Setenv("LUMEN_COLLECTOR_ENDPOINT", "otel:4317")
	t.Setenv("LUMEN_COLLECTOR_TIMEOUT", "3s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ModeConsoleAndFile, cfg.Mode)
	assert.Equal(t, "warn,router=debug", cfg.Filter)
	assert.True(t, cfg.JSON)
	assert.Equal(t, "/var/log/app", cfg.LogDir)
	assert.False(t, cfg.AnsiConsole)
	assert.Equal(t, "otel:4317", cfg.Collector.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.Collector.Timeout)

	// Untouched fields keep their defaults.
	assert.Equal(t, 100, cfg.File.MaxSizeMB)
}

func TestFromEnv_BadMode(t *testing.T) {
	t.Setenv("LUMEN_MODE", "wat")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestConfig_Builders(t *testing.T) {
	base := Default()

	cfg := base.
		WithMode(ModeFile).
		WithFilter("debug").
		WithLogDir("/tmp/x").
		WithJSON().
		WithService("svc", "2.0")

	assert.Equal(t, ModeFile, cfg.Mode)
	assert.Equal(t, "debug", cfg.Filter)
	assert.Equal(t, "/tmp/x", cfg.LogDir)
	assert.True(t, cfg.JSON)
	assert.Equal(t, "svc", cfg.Service)
	assert.Equal(t, "2.0", cfg.Version)

	// Builders copy; the base record is untouched.
	assert.Equal(t, ModeConsole, base.Mode)
	assert.Empty(t, base.Filter)

	live := base.WithCollector("localhost:4317")
	assert.Equal(t, ModeLiveExport, live.Mode)
	assert.Equal(t, "localhost:4317", live.Collector.Endpoint)
}
