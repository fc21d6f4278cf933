package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapWrapper_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithFields(map[string]interface{}{"complaint_id": int64(42)}).
		WithError(errors.New("db down")).
		Warn("Failed to persist", map[string]interface{}{"attempt": 2})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "Failed to persist", entries[0].Message)
		assert.Equal(t, int64(42), ctx["complaint_id"])
		assert.Equal(t, "db down", ctx["error"])
		assert.Equal(t, int64(2), ctx["attempt"])
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestNewWithOptions(t *testing.T) {
	log := NewWithOptions(Options{
		Level:  "error",
		Format: "json",
		Output: "stderr",
		Fields: map[string]interface{}{"service": "complaint-triage"},
	})
	assert.NotNil(t, log)
	log.Info("suppressed below error level", nil)
	Sync(log)
}

func TestNewNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	log.With(map[string]interface{}{"k": "v"}).Error("nothing", nil)
}
