// Package logging provides the structured logger shared by hitsheet packages.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level represents logging verbosity levels
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelDebug:
		return "debug"
	default:
		return "info"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a config string onto a Level. Unknown values fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Logger wraps slog.Logger with hitsheet-specific context helpers
type Logger struct {
	*slog.Logger
	level Level
}

// New creates a logger writing to w. format is "text" or "json".
func New(w io.Writer, level Level, format string) *Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level.slogLevel()}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler), level: level}
}

// Discard returns a logger that drops everything. Used by tests and library callers
// that did not configure logging.
func Discard() *Logger {
	return New(io.Discard, LevelError, "text")
}

// Level returns the current log level
func (l *Logger) Level() Level {
	return l.level
}

// WithComponent returns a logger with component context
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With("component", component), level: l.level}
}

// WithSheet returns a logger with worksheet context
func (l *Logger) WithSheet(sheet string) *Logger {
	return &Logger{Logger: l.Logger.With("sheet", sheet), level: l.level}
}

// WithRequest returns a logger with HTTP request context
func (l *Logger) WithRequest(method, url string) *Logger {
	return &Logger{Logger: l.Logger.With("method", method, "url", url), level: l.level}
}

var defaultLogger = New(os.Stderr, LevelInfo, "text")

// SetDefault replaces the process-wide logger.
func SetDefault(logger *Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}

// Default returns the process-wide logger.
func Default() *Logger {
	return defaultLogger
}

// OrDefault returns l, or the process-wide logger when l is nil.
func OrDefault(l *Logger) *Logger {
	if l == nil {
		return defaultLogger
	}
	return l
}
