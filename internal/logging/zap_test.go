package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level string
		dev   bool
		want  zapcore.Level
	}{
		{"", false, zapcore.InfoLevel},
		{"debug", true, zapcore.DebugLevel},
		{"WARN", false, zapcore.WarnLevel},
		{"error", true, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		l, err := New(tt.level, tt.dev)
		require.NoError(t, err, tt.level)
		assert.True(t, l.Core().Enabled(tt.want), tt.level)
		assert.False(t, l.Core().Enabled(tt.want-1), tt.level)
	}
}

func TestNewBadLevel(t *testing.T) {
	_, err := New("loud", false)
	require.Error(t, err)
	assert.Panics(t, func() { Must("loud", false) })
}
