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

func newObserved(t *testing.T) (*ZapLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapLogger(zap.New(core)), logs
}

func TestZapLogger_Levels(t *testing.T) {
	log, logs := newObserved(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	entries := logs.All()
	require.Len(t, entries, 4)

	want := []struct {
		level zapcore.Level
		msg   string
		key   string
	}{
		{zapcore.DebugLevel, "dbg", "a"},
		{zapcore.InfoLevel, "inf", "b"},
		{zapcore.WarnLevel, "wrn", "c"},
		{zapcore.ErrorLevel, "err", "d"},
	}
	for i, tc := range want {
		assert.Equal(t, tc.level, entries[i].Level)
		assert.Equal(t, tc.msg, entries[i].Message)
		assert.Contains(t, entries[i].ContextMap(), tc.key)
	}
}

func TestZapLogger_WithAddsFields(t *testing.T) {
	log, logs := newObserved(t)

	log.With("component", "quote").Info(context.Background(), "hello", "k", "v")

	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "quote", fields["component"])
	assert.Equal(t, "v", fields["k"])
}

func TestZapLogger_RequestIDFromContext(t *testing.T) {
	log, logs := newObserved(t)
	ctx := WithRequestID(context.Background(), "req-42")

	log.Info(ctx, "handled")

	assert.Equal(t, "req-42", logs.All()[0].ContextMap()["request_id"])
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	_, err := New("info", "xml")
	assert.Error(t, err)

	_, err = New("loud", "json")
	assert.Error(t, err)

	l, err := New("debug", "console")
	require.NoError(t, err)
	assert.NotNil(t, l)
}
