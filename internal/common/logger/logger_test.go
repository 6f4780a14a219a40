package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAdapter_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.With(map[string]interface{}{"session": "abc"}).
		Info("stage advanced", map[string]interface{}{"stage": "goals"})
	log.WithError(errors.New("refused")).Warn("request failed", nil)
	log.Debug("stale result dropped", map[string]interface{}{"requestId": uint64(7)})

	entries := logs.All()
	assert.Len(t, entries, 3)

	assert.Equal(t, "stage advanced", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "abc", ctx["session"])
	assert.Equal(t, "goals", ctx["stage"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "refused", entries[1].ContextMap()["error"])

	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
}

func TestMapToZapFields_Errors(t *testing.T) {
	fields := mapToZapFields(map[string]interface{}{"cause": errors.New("boom")})
	assert.Len(t, fields, 1)
	assert.Equal(t, "cause", fields[0].Key)
	assert.Nil(t, mapToZapFields(nil))
}

func TestNew_Levels(t *testing.T) {
	assert.True(t, New("debug", "console").Core().Enabled(zapcore.DebugLevel))
	assert.False(t, New("warn", "json").Core().Enabled(zapcore.InfoLevel))
	assert.False(t, New("bogus", "json").Core().Enabled(zapcore.DebugLevel))
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.WithFields(map[string]interface{}{"a": 1}).Error("ignored", nil)
	})
}
