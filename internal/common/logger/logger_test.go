package logger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestZapWrapper_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"runId": "abc"})

	log.Info("dropped below level", nil)
	log.Warn("kept", map[string]interface{}{"action": "addNote"})
	log.WithError(fmt.Errorf("boom")).Error("failed", nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "kept", entries[0].Message)
	assert.Equal(t, "abc", entries[0].ContextMap()["runId"])
	assert.Equal(t, "addNote", entries[0].ContextMap()["action"])

	assert.Equal(t, "failed", entries[1].Message)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestNewStructured_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		t.Run(format, func(t *testing.T) {
			log := NewStructured("debug", format)
			require.NotNil(t, log)
			log.Debug("hello", map[string]interface{}{"format": format})
			Sync(log)
		})
	}
}
