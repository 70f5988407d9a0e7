package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestLogger_EmitsFields(t *testing.T) {
	log, logs := newObserved(zapcore.DebugLevel)

	log.Info("supplier query complete",
		String("supplier", "acme"),
		Int("candidates", 7),
		Float64("score", 0.83),
		Bool("cached", true),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "supplier query complete", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "acme", fields["supplier"])
	assert.EqualValues(t, 7, fields["candidates"])
	assert.Equal(t, 0.83, fields["score"])
	assert.Equal(t, true, fields["cached"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	log, logs := newObserved(zapcore.WarnLevel)

	log.Debug("dropped")
	log.Info("dropped")
	log.Warn("kept")
	log.Error("kept")

	assert.Equal(t, 2, logs.Len())
}

func TestLogger_WithAddsPersistentFields(t *testing.T) {
	log, logs := newObserved(zapcore.InfoLevel)

	child := log.With(String("supplier", "acme"))
	child.Info("first")
	child.Info("second")

	for _, e := range logs.All() {
		assert.Equal(t, "acme", e.ContextMap()["supplier"])
	}
}

func TestLogger_Named(t *testing.T) {
	log, logs := newObserved(zapcore.InfoLevel)
	log.Named("aggregator").Info("streaming")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "aggregator", logs.All()[0].LoggerName)
}

func TestErr_NilError(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestNopLogger_Discards(t *testing.T) {
	log := NewNopLogger()
	// Must not panic, must accept chaining.
	log.With(String("k", "v")).Named("x").Info("ignored")
}

func TestDefault_ReplaceAndRead(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	log, logs := newObserved(zapcore.InfoLevel)
	SetDefault(log)
	Default().Info("via default")
	assert.Equal(t, 1, logs.Len())

	// nil is ignored
	SetDefault(nil)
	assert.Equal(t, log, Default())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("weird"))
}
