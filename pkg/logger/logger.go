package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how log records are written
type Options struct {
	Level  string
	Format string // json or text

	// File enables a rotating log file instead of stdout
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New creates a JSON logger on stdout at the given level
func New(level string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, "json")
}

// NewWithWriter creates a logger writing to w
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// NewFromOptions creates a logger from opts. The returned closer releases the
// log file and is a no-op when logging to stdout.
func NewFromOptions(opts Options) (*slog.Logger, io.Closer) {
	if opts.File == "" {
		return NewWithWriter(os.Stdout, opts.Level, opts.Format), nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
	return NewWithWriter(file, opts.Level, opts.Format), file
}

// ParseLevel maps debug, info, warn and error to slog levels.
// Anything else is treated as info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
