package logger

import (
	"context"
	"time"
)

// Level is the severity of a log entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// TimestampFormat is ISO-8601 with millisecond precision in UTC.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Entry is one log record as handed to external reporters.
type Entry struct {
	Level     Level                  `json:"level"`
	Message   string                 `json:"message"`
	Context   string                 `json:"context,omitempty"`
	Timestamp string                 `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewEntry stamps an entry with the current time. The metadata map is copied so
// later changes by the caller do not leak into an entry already handed off.
func NewEntry(level Level, message, context string, metadata map[string]interface{}) Entry {
	var md map[string]interface{}
	if len(metadata) > 0 {
		md = make(map[string]interface{}, len(metadata))
		for k, v := range metadata {
			md[k] = v
		}
	}
	return Entry{
		Level:     level,
		Message:   message,
		Context:   context,
		Timestamp: time.Now().UTC().Format(TimestampFormat),
		Metadata:  md,
	}
}

// Reporter receives error-level entries, e.g. an alerting topic or an index.
type Reporter interface {
	Report(ctx context.Context, entry Entry) error
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, entry Entry) error

func (f ReporterFunc) Report(ctx context.Context, entry Entry) error {
	return f(ctx, entry)
}
