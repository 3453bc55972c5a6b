package lumen

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStdout redirects os.Stdout while fn runs. Init must happen inside
// fn: the console core locks the *os.File it sees at build time.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	require.NoError(t, w.Close())
	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

// readLogDir concatenates every log file under dir.
func readLogDir(t *testing.T, dir string) string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var sb strings.Builder
	for _, e := range entries {
		content, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		sb.Write(content)
	}
	return sb.String()
}

// The concrete composition scenario: console-and-file mode, one event, close
// the guard, and the event is on both sinks.
func TestInit_ConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	cfg := Default().WithMode(ModeConsoleAndFile).WithLogDir(dir)
	cfg.AnsiConsole = false
	cfg.LossyFile = false

	stdout := captureStdout(t, func() {
		guard, warnings, err := Init(cfg)
		require.NoError(t, err)
		require.Empty(t, warnings)

		guard.Logger().Info(context.Background(), "tee message", String("k", "v"))
		require.NoError(t, guard.Close(context.Background()))
	})

	assert.Contains(t, stdout, "tee message")
	assert.Contains(t, readLogDir(t, dir), "tee message")
}

func TestInit_ConsoleOnly(t *testing.T) {
	dir := t.TempDir()
	cfg := Default().WithLogDir(dir)
	cfg.AnsiConsole = false

	stdout := captureStdout(t, func() {
		guard, warnings, err := Init(cfg)
		require.NoError(t, err)
		require.Empty(t, warnings)

		guard.Logger().Info(context.Background(), "console only")
		require.NoError(t, guard.Close(context.Background()))
	})

	assert.Contains(t, stdout, "console only")

	// The log directory is ignored in console mode.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInit_FileOnly(t *testing.T) {
	dir := t.TempDir()
	cfg := Default().WithMode(ModeFile).WithLogDir(dir)
	cfg.LossyFile = false

	stdout := captureStdout(t, func() {
		guard, warnings, err := Init(cfg)
		require.NoError(t, err)
		require.Empty(t, warnings)

		guard.Logger().Info(context.Background(), "file only")
		require.NoError(t, guard.Close(context.Background()))
	})

	assert.NotContains(t, stdout, "file only")
	assert.Contains(t, readLogDir(t, dir), "file only")
}

// A runtime level change must reach the sinks, not only the method gate.
func TestSetLevel_OpensDebugAtFileSink(t *testing.T) {
	dir := t.TempDir()
	cfg := Default().WithMode(ModeFile).WithLogDir(dir)
	cfg.LossyFile = false

	guard, warnings, err := Init(cfg)
	require.NoError(t, err)
	require.Empty(t, warnings)

	ctx := context.Background()
	guard.Logger().Debug(ctx, "before raise")
	guard.Logger().SetLevel("debug")
	guard.Logger().Debug(ctx, "after raise")
	require.NoError(t, guard.Close(ctx))

	content := readLogDir(t, dir)
	assert.NotContains(t, content, "before raise")
	assert.Contains(t, content, "after raise")
}

func TestInit_FileModeWithoutDir_Warns(t *testing.T) {
	guard, warnings, err := Init(Default().WithMode(ModeFile))
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "file", warnings[0].Component)
	assert.Contains(t, warnings[0].Error(), "no log directory")

	require.NoError(t, guard.Close(context.Background()))
}

// Close must flush: the event is in the file before Close returns, with no
// sleeps in between.
func TestClose_FlushesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := Default().WithMode(ModeFile).WithLogDir(dir)

	guard, _, err := Init(cfg)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		guard.Logger().Info(context.Background(), "flush check", Int("i", i))
	}
	require.NoError(t, guard.Close(context.Background()))

	assert.Contains(t, readLogDir(t, dir), "flush check")
}

func TestClose_Idempotent(t *testing.T) {
	guard, _, err := Init(Default().WithMode(ModeFile).WithLogDir(t.TempDir()))
	require.NoError(t, err)

	require.NoError(t, guard.Close(context.Background()))
	require.NoError(t, guard.Close(context.Background()))
}

func TestAnsiFlags_Independent(t *testing.T) {
	ctx := context.Background()

	// AnsiConsole on must not color the file.
	dir := t.TempDir()
	cfg := Default().WithMode(ModeFile).WithLogDir(dir)
	cfg.AnsiConsole = true
	cfg.AnsiFile = false

	guard, _, err := Init(cfg)
	require.NoError(t, err)
	guard.Logger().Info(ctx, "plain file line")
	require.NoError(t, guard.Close(ctx))
	assert.NotContains(t, readLogDir(t, dir), "\x1b[", "file must stay free of ANSI codes")

	// AnsiFile on colors the file regardless of the console flag.
	dir = t.TempDir()
	cfg = Default().WithMode(ModeFile).WithLogDir(dir)
	cfg.AnsiConsole = false
	cfg.AnsiFile = true

	guard, _, err = Init(cfg)
	require.NoError(t, err)
	guard.Logger().Info(ctx, "colored file line")
	require.NoError(t, guard.Close(ctx))
	assert.Contains(t, readLogDir(t, dir), "\x1b[")
}

func TestInit_JSONFile(t *testing.T) {
	dir := t.TempDir()
	cfg := Default().WithMode(ModeFile).WithLogDir(dir).WithJSON().
		WithService("svc", "1.2.3")

	guard, _, err := Init(cfg)
	require.NoError(t, err)
	guard.Logger().Info(context.Background(), "structured", String("k", "v"))
	require.NoError(t, guard.Close(context.Background()))

	content := readLogDir(t, dir)
	assert.Contains(t, content, `"msg":"structured"`)
	assert.Contains(t, content, `"k":"v"`)
	assert.Contains(t, content, `"service":"svc"`)
	assert.Contains(t, content, `"version":"1.2.3"`)
}

func TestInit_LiveExport_NoEndpoint(t *testing.T) {
	cfg := Default().WithMode(ModeLiveExport)

	guard, warnings, err := Init(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "collector", warnings[0].Component)
	assert.Contains(t, warnings[0].Error(), "no collector endpoint")

	// Console fallback still works and the tracer is a no-op.
	guard.Logger().Info(context.Background(), "degraded but alive")
	_, span := guard.Tracer("test").Start(context.Background(), "op")
	span.End()

	require.NoError(t, guard.Close(context.Background()))
}

func TestInit_LiveExport_WaitTimeout(t *testing.T) {
	cfg := Default().WithCollector("127.0.0.1:1")
	cfg.Collector.WaitForCollector = true
	cfg.Collector.WaitTimeout = time.Millisecond

	start := time.Now()
	guard, warnings, err := Init(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "collector", warnings[0].Component)
	assert.Less(t, time.Since(start), 10*time.Second)

	require.NoError(t, guard.Close(context.Background()))
}

func TestGlobal_BacksPackageHelpers(t *testing.T) {
	dir := t.TempDir()
	cfg := Default().WithMode(ModeFile).WithLogDir(dir)
	cfg.LossyFile = false

	guard, _, err := Init(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	Info(ctx, "via package helper")
	Named("router").Warn(ctx, "named helper")
	require.NoError(t, Sync())
	require.NoError(t, guard.Close(ctx))

	content := readLogDir(t, dir)
	assert.Contains(t, content, "via package helper")
	assert.Contains(t, content, "named helper")

	assert.Same(t, guard, L())
}

func TestGuard_MeterNoop(t *testing.T) {
	guard, _, err := Init(Default())
	require.NoError(t, err)
	defer guard.Close(context.Background())

	meter := guard.Meter("test")
	counter, err := meter.Int64Counter("ops")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
}
