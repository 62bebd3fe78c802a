// Package logger wraps zerolog with the fields every screener log line carries.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/magicformula/pkg/config"
)

// ServiceName is attached to every log line
const ServiceName = "magic-formula"

// Logger is immutable; the With* methods return derived copies.
// ⭐ SSOT: all logging goes through this package
type Logger struct {
	zlog zerolog.Logger
}

// New logs to stdout
func New(cfg *config.Config) *Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter builds the root logger. LOG_FORMAT=console (or pretty) switches
// from JSON lines to zerolog's console writer.
func NewWithWriter(cfg *config.Config, w io.Writer) *Logger {
	switch strings.ToLower(cfg.LogFormat) {
	case "console", "pretty":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	zlog := zerolog.New(w).
		Level(levelOf(cfg.LogLevel)).
		With().
		Timestamp().
		Str("service", ServiceName).
		Str("env", cfg.Env).
		Logger()

	return &Logger{zlog: zlog}
}

// Nop discards everything. Tests use it.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// levelOf falls back to info for unknown names
func levelOf(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Level reports the minimum level this logger writes
func (l *Logger) Level() zerolog.Level {
	return l.zlog.GetLevel()
}

func (l *Logger) Debug(msg string) { l.zlog.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.zlog.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.zlog.Warn().Msg(msg) }
func (l *Logger) Error(msg string) { l.zlog.Error().Msg(msg) }

// WithModule tags lines with the component that wrote them
func (l *Logger) WithModule(name string) *Logger {
	return l.WithField("module", name)
}

func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{zlog: l.zlog.With().Interface(key, value).Logger()}
}

// WithFields adds every entry of fields; map order does not matter
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	c := l.zlog.With()
	for k, v := range fields {
		c = c.Interface(k, v)
	}
	return &Logger{zlog: c.Logger()}
}

// WithError is a no-op for a nil err
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{zlog: l.zlog.With().Err(err).Logger()}
}
