package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"loopguard/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level         string // ALL, INFO, ERROR, NONE
	Format        string // console or json
	FilePath      string // optional log file, rotated by size
	MaxSizeMB     int
	MaxBackups    int
	ConsoleOutput io.Writer // optional additional writer, typically os.Stderr
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level, discard := parseLevel(opts.Level)
	if discard {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil
	}

	var writers []io.Writer
	if path := strings.TrimSpace(opts.FilePath); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		if err := rotate(path, opts.MaxSizeMB, opts.MaxBackups); err != nil {
			return nil, err
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		writers = append(writers, file)
	}
	if opts.ConsoleOutput != nil {
		writers = append(writers, opts.ConsoleOutput)
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = os.Stderr
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(out, level)
	case "console":
		handler = newConsoleHandler(out, level)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	return slog.New(handler), nil
}

// NewFromConfig creates a logger for a handler invocation using application
// config. Console output is omitted: SABnzbd captures script stdout/stderr,
// and the pre-queue stdout protocol must stay clean.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "ALL", Format: "console", ConsoleOutput: os.Stderr})
	}
	return New(Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.MaxLogSizeMB,
		MaxBackups: cfg.MaxLogBackups,
	})
}

// Discard returns a logger that drops all records.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "NONE":
		return slog.LevelError, true
	case "ERROR":
		return slog.LevelError, false
	case "INFO":
		return slog.LevelInfo, false
	case "ALL", "":
		return slog.LevelDebug, false
	default:
		return slog.LevelDebug, false
	}
}
