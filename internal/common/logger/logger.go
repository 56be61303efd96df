package logger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger defines the minimal logging interface used across the service.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Log(level Level, msg string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
	With(fields map[string]interface{}) Logger
	// Named scopes the logger to a context; entries carry it and development
	// console lines are prefixed with "[context]".
	Named(context string) Logger
}

// Options configures a structured logger. Development is read once here and
// never changes for the lifetime of the logger.
type Options struct {
	Level       string
	Format      string
	Development bool
	Reporter    Reporter
	// ReportTimeout bounds a single Reporter call. Zero means 3s.
	ReportTimeout time.Duration
}

func New(levelStr, format string) *zap.Logger {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// zapWrapper adapts zap.Logger to the Logger interface.
type zapWrapper struct {
	l             *zap.Logger
	context       string
	development   bool
	reporter      Reporter
	reportTimeout time.Duration
}

func (z *zapWrapper) Debug(msg string, fields map[string]interface{}) {
	z.Log(LevelDebug, msg, fields)
}

func (z *zapWrapper) Info(msg string, fields map[string]interface{}) {
	z.Log(LevelInfo, msg, fields)
}

func (z *zapWrapper) Warn(msg string, fields map[string]interface{}) {
	z.Log(LevelWarn, msg, fields)
}

func (z *zapWrapper) Error(msg string, fields map[string]interface{}) {
	z.Log(LevelError, msg, fields)
}

// Log writes one entry. It never panics into the caller: a failing encoder or
// reporter is swallowed.
func (z *zapWrapper) Log(level Level, msg string, fields map[string]interface{}) {
	defer func() { _ = recover() }()

	entry := NewEntry(level, msg, z.context, fields)

	line := msg
	if z.development && z.context != "" {
		line = fmt.Sprintf("[%s] %s", z.context, msg)
	}
	zf := mapToZapFields(fields)
	if z.context != "" && !z.development {
		zf = append(zf, zap.String("context", z.context))
	}

	switch level {
	case LevelDebug:
		z.l.Debug(line, zf...)
	case LevelWarn:
		z.l.Warn(line, zf...)
	case LevelError:
		z.l.Error(line, zf...)
	default:
		z.l.Info(line, zf...)
	}

	if level == LevelError {
		z.report(entry)
	}
}

func (z *zapWrapper) report(entry Entry) {
	if z.reporter == nil {
		if z.development {
			z.l.Error("logging service entry", zap.Any("entry", entry))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), z.reportTimeout)
	defer cancel()

	if err := z.reporter.Report(ctx, entry); err != nil && z.development {
		z.l.Warn("error report not delivered", zap.Error(err))
	}
}

func (z *zapWrapper) clone(l *zap.Logger) *zapWrapper {
	c := *z
	c.l = l
	return &c
}

func (z *zapWrapper) WithFields(fields map[string]interface{}) Logger {
	return z.clone(z.l.With(mapToZapFields(fields)...))
}

func (z *zapWrapper) WithError(err error) Logger {
	return z.clone(z.l.With(zap.Error(err)))
}

// With is an alias for WithFields to match worker interface expectations
func (z *zapWrapper) With(fields map[string]interface{}) Logger {
	return z.WithFields(fields)
}

func (z *zapWrapper) Named(context string) Logger {
	c := z.clone(z.l)
	c.context = context
	return c
}

func mapToZapFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

// NewStructured creates a Logger that logs using zap under the hood.
// Development mode logs every level to the console; production writes JSON
// at the configured level.
func NewStructured(opts Options) Logger {
	level, format := opts.Level, opts.Format
	if opts.Development {
		level, format = "debug", "console"
	}
	return newWrapper(New(level, format), opts)
}

func newWrapper(l *zap.Logger, opts Options) *zapWrapper {
	timeout := opts.ReportTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &zapWrapper{
		l:             l,
		development:   opts.Development,
		reporter:      opts.Reporter,
		reportTimeout: timeout,
	}
}

// NewZapAdapter wraps an existing *zap.Logger to implement the Logger interface
func NewZapAdapter(l *zap.Logger, opts Options) Logger {
	return newWrapper(l, opts)
}

// NewTestLogger creates a Logger suitable for testing that outputs to testing.T
func NewTestLogger(t testing.TB) Logger {
	return newWrapper(zaptest.NewLogger(t), Options{})
}

// NewNoOpLogger creates a Logger that doesn't output anything (useful for tests)
func NewNoOpLogger() Logger {
	return newWrapper(zap.NewNop(), Options{})
}
