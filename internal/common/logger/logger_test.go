package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingReporter struct {
	mu      sync.Mutex
	entries []Entry
	err     error
}

func (r *recordingReporter) Report(_ context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return r.err
}

func newObserved(opts Options) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapAdapter(zap.New(core), opts), logs
}

func TestLogger_ErrorForwardedToReporter(t *testing.T) {
	rep := &recordingReporter{}
	log, logs := newObserved(Options{Reporter: rep})

	log.Named("market-search").Error("provider unreachable", map[string]interface{}{"status": 503})

	require.Len(t, rep.entries, 1)
	entry := rep.entries[0]
	assert.Equal(t, LevelError, entry.Level)
	assert.Equal(t, "provider unreachable", entry.Message)
	assert.Equal(t, "market-search", entry.Context)
	assert.Equal(t, 503, entry.Metadata["status"])

	ts, err := time.Parse(time.RFC3339, entry.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)

	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestLogger_NonErrorLevelsNotForwarded(t *testing.T) {
	rep := &recordingReporter{}
	log, logs := newObserved(Options{Reporter: rep})

	log.Debug("d", nil)
	log.Info("i", nil)
	log.Warn("w", nil)

	assert.Empty(t, rep.entries)
	assert.Equal(t, 3, logs.Len())
}

func TestLogger_DevelopmentPrefixesContext(t *testing.T) {
	log, logs := newObserved(Options{Development: true})

	log.Named("reset").Info("deleting rows", map[string]interface{}{"userId": "u-1"})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "[reset] deleting rows", entries[0].Message)
	assert.Equal(t, "u-1", entries[0].ContextMap()["userId"])
}

func TestLogger_ProductionCarriesContextAsField(t *testing.T) {
	log, logs := newObserved(Options{})

	log.Named("reset").Info("deleting rows", nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "deleting rows", entries[0].Message)
	assert.Equal(t, "reset", entries[0].ContextMap()["context"])
}

func TestLogger_DevelopmentEchoWithoutReporter(t *testing.T) {
	log, logs := newObserved(Options{Development: true})

	log.Error("boom", nil)

	assert.Equal(t, 1, logs.FilterMessage("logging service entry").Len())
}

func TestLogger_ProductionWithoutReporterIsSilent(t *testing.T) {
	log, logs := newObserved(Options{})

	log.Error("boom", nil)

	assert.Equal(t, 0, logs.FilterMessage("logging service entry").Len())
	assert.Equal(t, 1, logs.Len())
}

func TestLogger_ReporterFailuresDoNotPropagate(t *testing.T) {
	failing := &recordingReporter{err: errors.New("sns down")}
	log, _ := newObserved(Options{Reporter: failing})
	assert.NotPanics(t, func() { log.Error("boom", nil) })

	panicking := ReporterFunc(func(context.Context, Entry) error { panic("reporter bug") })
	log, _ = newObserved(Options{Reporter: panicking})
	assert.NotPanics(t, func() { log.Error("boom", nil) })
}

func TestNewEntry_CopiesMetadata(t *testing.T) {
	md := map[string]interface{}{"k": "v"}
	entry := NewEntry(LevelWarn, "msg", "", md)
	md["k"] = "changed"

	assert.Equal(t, "v", entry.Metadata["k"])
	assert.Empty(t, entry.Context)
	assert.Nil(t, NewEntry(LevelInfo, "msg", "", nil).Metadata)
}
