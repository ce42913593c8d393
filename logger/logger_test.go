package logger

import (
	"testing"

	"github.com/NightSight1044/legalCRM1/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("development console", func(t *testing.T) {
		l, err := New(&config.Config{Environment: "development", LogLevel: "debug"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		l, err := New(&config.Config{Environment: "production", LogLevel: "loud"})
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	})
}

func TestInstall(t *testing.T) {
	before := zap.L()
	l, restore, err := Install(&config.Config{Environment: "test", LogLevel: "warn"})
	require.NoError(t, err)
	assert.Same(t, l, zap.L())

	restore()
	assert.Same(t, before, zap.L())
}
