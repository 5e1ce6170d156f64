// Package logger provides a simple, clean logging interface.
package logger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger defines the logging interface.
type Logger interface {
	// Context-aware variants
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// Field constructors.
func String(key, val string) Field          { return Field{Key: key, Value: val} }
func Int(key string, val int) Field         { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field { return Field{Key: key, Value: val} }
func Any(key string, val interface{}) Field { return Field{Key: key, Value: val} }
func Error(err error) Field                 { return Field{Key: "error", Value: err} }

// zerologLogger implements Logger using zerolog.
type zerologLogger struct {
	zl zerolog.Logger
}

func (l *zerologLogger) Named(name string) Logger {
	return &zerologLogger{zl: l.zl.With().Str("component", name).Logger()}
}

func (l *zerologLogger) Info(ctx context.Context, msg string, fields ...Field) {
	applyFields(l.zl.Info().Ctx(ctx), fields).Msg(msg)
}

func (l *zerologLogger) Error(ctx context.Context, msg string, fields ...Field) {
	applyFields(l.zl.Error().Ctx(ctx), fields).Msg(msg)
}

func (l *zerologLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	applyFields(l.zl.Debug().Ctx(ctx), fields).Msg(msg)
}

func (l *zerologLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	applyFields(l.zl.Warn().Ctx(ctx), fields).Msg(msg)
}

func (l *zerologLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	applyFields(l.zl.Fatal().Ctx(ctx), fields).Msg(msg)
}

// applyFields converts our Field type to zerolog event fields.
func applyFields(e *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case error:
			if f.Key == "error" {
				e = e.Err(v)
				continue
			}
			e = e.AnErr(f.Key, v)
		case string:
			e = e.Str(f.Key, v)
		case int:
			e = e.Int(f.Key, v)
		case float64:
			e = e.Float64(f.Key, v)
		default:
			e = e.Interface(f.Key, v)
		}
	}
	return e
}

var global Logger

// Init initializes the global logger.
func Init() error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zl := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()
	global = &zerologLogger{zl: zl}
	return nil
}

// Get returns the global logger.
func Get() Logger {
	if global == nil {
		// Don't auto-initialize with production settings
		// The logger should be explicitly initialized by the application
		panic("logger not initialized. Call logger.Init() first")
	}
	return global
}

// Named creates a named logger.
func Named(name string) Logger {
	return Get().Named(name)
}

// Nop returns a logger that discards everything. Useful as a test default.
func Nop() Logger {
	return &zerologLogger{zl: zerolog.Nop()}
}

// Sync flushes buffered log entries.
func Sync() error {
	// zerolog writes synchronously; nothing to flush
	return nil
}

// SetLevel updates the logging level process-wide.
func SetLevel(level zerolog.Level) { zerolog.SetGlobalLevel(level) }

// SetLevelString parses and sets the logging level.
// Accepts: debug, info, warn/warning, error (case-insensitive).
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(zerolog.DebugLevel)
	case "", "info":
		SetLevel(zerolog.InfoLevel)
	case "warn", "warning":
		SetLevel(zerolog.WarnLevel)
	case "error":
		SetLevel(zerolog.ErrorLevel)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}
