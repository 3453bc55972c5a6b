package lumen

import (
	"io"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// logFilePath returns the per-run log file name inside dir. Each Init gets a
// fresh timestamped file; rotation within the run is lumberjack's job.
func logFilePath(dir string, now time.Time) string {
	return filepath.Join(dir, "log_"+now.Format("01-02-2006_15-04-05")+".txt")
}

// newFileWriter creates the rotating file writer for this run. Directory
// creation and rotation are delegated to lumberjack. Returns nil if the
// directory is empty.
func newFileWriter(cfg Config) io.WriteCloser {
	if cfg.LogDir == "" {
		return nil
	}

	maxSize := cfg.File.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}

	maxAge := cfg.File.MaxAgeDays
	if maxAge <= 0 {
		maxAge = 7
	}

	maxBackups := cfg.File.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 5
	}

	return &lumberjack.Logger{
		Filename:   logFilePath(cfg.LogDir, time.Now()),
		MaxSize:    maxSize, // megabytes
		MaxAge:     maxAge,  // days
		MaxBackups: maxBackups,
		Compress:   cfg.File.Compress,
		LocalTime:  true,
	}
}
