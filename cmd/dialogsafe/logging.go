package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/zkrige/DialogSafe/internal/config"
)

// newLogger builds the run logger. Logs go to stdout unless a log file is
// configured, in which case a size-rotated file is used. The returned closer
// flushes the rotated sink.
func newLogger(cfg config.Config) (*slog.Logger, func()) {
	level := parseLevel(cfg.LogLevel)
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	closer := func() {}
	if cfg.LogFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out = rotated
		closer = func() { _ = rotated.Close() }
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer
}

func parseLevel(value string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
