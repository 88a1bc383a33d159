package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_CarriesActionAndRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore("relay", core)

	ctx := log.WithRequestID(context.Background(), "req-1")
	log.Info(ctx, "order_received", "order webhook received", map[string]any{"order_id": "42"})

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "order webhook received", entries[0].Message)
	assert.Equal(t, "relay", fields["service"])
	assert.Equal(t, "order_received", fields["action"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, map[string]any{"order_id": "42"}, fields["details"])
}

func TestLogger_ErrorIncludesMessageAndStack(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore("relay", core)

	log.Error(context.Background(), "send_failed", "could not send", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	errField, ok := entries[0].ContextMap()["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "boom", errField["msg"])
	assert.NotEmpty(t, errField["stack"])
}

func TestLogger_ErrorWithNilError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore("relay", core)

	log.Error(context.Background(), "weird", "nil error", nil)

	errField := logs.All()[0].ContextMap()["error"].(map[string]any)
	assert.Equal(t, "unknown error", errField["msg"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel(" error "))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestRequestIDFrom_Empty(t *testing.T) {
	assert.Empty(t, RequestIDFrom(context.Background()))
}
