// Package logging provides structured logging for Notely.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// Level represents log level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) charm() log.Level {
	switch l {
	case DEBUG:
		return log.DebugLevel
	case WARN:
		return log.WarnLevel
	case ERROR:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ParseLevel maps a config string to a Level, defaulting to INFO
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Format selects how lines are rendered
type Format string

const (
	FormatAuto   Format = "" // text on a terminal, logfmt otherwise
	FormatText   Format = "text"
	FormatLogfmt Format = "logfmt"
	FormatJSON   Format = "json"
)

// Logger is a structured logger
type Logger struct {
	l *log.Logger
}

var (
	mu            sync.Mutex
	defaultLogger = newLogger(os.Stdout, INFO, FormatAuto)
)

func newLogger(w io.Writer, level Level, format Format) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level.charm(),
	})
	applyFormat(l, w, format)
	return &Logger{l: l}
}

func applyFormat(l *log.Logger, w io.Writer, format Format) {
	switch format {
	case FormatJSON:
		l.SetFormatter(log.JSONFormatter)
	case FormatLogfmt:
		l.SetFormatter(log.LogfmtFormatter)
	case FormatText:
		l.SetFormatter(log.TextFormatter)
	default:
		if isTerminal(w) {
			l.SetFormatter(log.TextFormatter)
		} else {
			l.SetFormatter(log.LogfmtFormatter)
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Default returns the package logger
func Default() *Logger {
	mu.Lock()
	defer mu.Unlock()
	return defaultLogger
}

// SetLevel sets the global log level
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger.l.SetLevel(level.charm())
}

// SetOutput sets the output writer
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger.l.SetOutput(w)
	applyFormat(defaultLogger.l, w, FormatAuto)
}

// Configure replaces the package logger
func Configure(w io.Writer, level Level, format Format) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = newLogger(w, level, format)
}

// WithField returns a logger with a field added
func WithField(key string, value interface{}) *Logger {
	return Default().WithField(key, value)
}

// WithFields returns a logger with multiple fields added
func WithFields(fields map[string]interface{}) *Logger {
	return Default().WithFields(fields)
}

// WithField adds a field to the logger
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{l: l.l.With(key, value)}
}

// WithFields adds multiple fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return &Logger{l: l.l.With(kv...)}
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) { Default().Debug(msg, args...) }

// Info logs an info message
func Info(msg string, args ...interface{}) { Default().Info(msg, args...) }

// Warn logs a warning message
func Warn(msg string, args ...interface{}) { Default().Warn(msg, args...) }

// Error logs an error message
func Error(msg string, args ...interface{}) { Default().Error(msg, args...) }

// Logger methods
func (l *Logger) Debug(msg string, args ...interface{}) { l.l.Debugf(msg, args...) }
func (l *Logger) Info(msg string, args ...interface{})  { l.l.Infof(msg, args...) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.l.Warnf(msg, args...) }
func (l *Logger) Error(msg string, args ...interface{}) { l.l.Errorf(msg, args...) }
