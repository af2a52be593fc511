package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(t *testing.T) (*ZapLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapLogger(zap.New(core)), logs
}

func TestZapLogger_Levels(t *testing.T) {
	log, logs := newObservedLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	want := []struct {
		level zapcore.Level
		msg   string
		key   string
		val   int64
	}{
		{zapcore.DebugLevel, "dbg", "a", 1},
		{zapcore.InfoLevel, "inf", "b", 2},
		{zapcore.WarnLevel, "wrn", "c", 3},
		{zapcore.ErrorLevel, "err", "d", 4},
	}
	for i, w := range want {
		assert.Equal(t, w.level, entries[i].Level)
		assert.Equal(t, w.msg, entries[i].Message)
		assert.Equal(t, w.val, entries[i].ContextMap()[w.key])
	}
}

func TestZapLogger_With_AddsFields(t *testing.T) {
	log, logs := newObservedLogger(t)

	log.With("module", "accounts", "rqid", "r-1").Info(context.Background(), "hello", "k", "v")

	entries := logs.FilterMessage("hello").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "accounts", fields["module"])
	assert.Equal(t, "r-1", fields["rqid"])
	assert.Equal(t, "v", fields["k"])
}

func TestNewProductionZap_UnknownLevelFallsBackToInfo(t *testing.T) {
	l, err := NewProductionZap("loud")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestNop_DoesNotPanic(t *testing.T) {
	var l Logger = Nop{}
	ctx := context.Background()
	l.With("a", 1).Info(ctx, "x")
	l.Debug(ctx, "x")
	l.Warn(ctx, "x")
	l.Error(ctx, "x")
}

func TestZapLogger_RequestIDFromContext(t *testing.T) {
	log, logs := newObservedLogger(t)
	ctx := ContextWithRequestID(context.Background(), "rq-ctx")

	log.Info(ctx, "from context")
	log.Info(ctx, "explicit", RequestIDKey, "rq-arg")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "rq-ctx", entries[0].ContextMap()[RequestIDKey])
	assert.Equal(t, "rq-arg", entries[1].ContextMap()[RequestIDKey])
	assert.Len(t, entries[1].Context, 1)
}
