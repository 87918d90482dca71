// Package logger provides structured logging for the SRRC events scraper.
//
// The logger is a thin layer over zap that keeps a small, map-based API so that
// call sites read the same everywhere. It supports four levels (DEBUG, INFO,
// WARN, ERROR) and two output formats: a human console format (the default,
// written to stderr so it never mixes with the report on stdout) and JSON.
//
// Example usage:
//
//	logger.Info("window scanned", logger.Fields{
//	    "window": "2025-01-01",
//	    "events": 4,
//	})
//
//	logger.Warn("fetch failed", logger.Fields{
//	    "window": "2025-01-01",
//	    "offset": 2,
//	    "error":  err.Error(),
//	})
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Format selects the log encoding
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Logger provides structured logging
type Logger struct {
	zl *zap.Logger
}

// Fields represents structured log fields
type Fields map[string]interface{}

var defaultLogger *Logger

func init() {
	defaultLogger = New(LevelInfo, os.Stderr, FormatConsole)
}

// ParseLevel converts a user supplied level name ("debug", "Info", "WARN", ...)
// into a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug, nil
	case LevelInfo, "":
		return LevelInfo, nil
	case LevelWarn, "WARNING":
		return LevelWarn, nil
	case LevelError:
		return LevelError, nil
	default:
		return "", fmt.Errorf("invalid log level: %s (must be debug, info, warn or error)", s)
	}
}

// ParseFormat converts a user supplied format name into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatConsole, "":
		return FormatConsole, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid log format: %s (must be 'console' or 'json')", s)
	}
}

// New creates a new logger with the specified minimum log level, output destination
// and encoding. Messages below the minimum level are discarded.
func New(level Level, output io.Writer, format Format) *Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var enc zapcore.Encoder
	if format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.ConsoleSeparator = " "
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(output)), zapLevel(level))
	return &Logger{zl: zap.New(core)}
}

// SetDefault sets the default package-level logger used by the convenience functions
// (Debug, Info, Warn, Error).
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

func zapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// log writes a structured log entry
func (l *Logger) log(level Level, message string, fields Fields, err error) {
	zfields := make([]zap.Field, 0, len(fields)+1)

	// Sorted keys keep console output stable between runs
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		zfields = append(zfields, zap.Any(k, fields[k]))
	}
	if err != nil {
		zfields = append(zfields, zap.Error(err))
	}

	switch level {
	case LevelDebug:
		l.zl.Debug(message, zfields...)
	case LevelWarn:
		l.zl.Warn(message, zfields...)
	case LevelError:
		l.zl.Error(message, zfields...)
	default:
		l.zl.Info(message, zfields...)
	}
}

// Debug logs a debug message with optional structured fields.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs an informational message with optional structured fields.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a warning message with optional structured fields.
// Warning messages indicate potential issues that don't prevent operation.
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs an error message with optional structured fields and an error object.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func (l *Logger) Sync() {
	_ = l.zl.Sync()
}

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	defaultLogger.Debug(message, fields)
}

// Info logs an info message with the default logger
func Info(message string, fields Fields) {
	defaultLogger.Info(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields) {
	defaultLogger.Warn(message, fields)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	defaultLogger.Error(message, fields, err)
}
