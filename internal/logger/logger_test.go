package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/abistudio/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithoutSinksIsNop(t *testing.T) {
	l, err := logger.NewLogger(&logger.LoggerConfig{})
	require.NoError(t, err)
	require.NotNil(t, l)
	l.Info("dropped")
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "abistudio.log")

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: true, File: path})
	require.NoError(t, err)
	l.Debug("hello from test")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
	assert.Contains(t, string(data), `"level":"debug"`)
}

func TestNewLoggerInfoLevelDropsDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, err := logger.NewLogger(&logger.LoggerConfig{File: path})
	require.NoError(t, err)
	l.Debug("quiet")
	l.Info("loud")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "quiet")
	assert.Contains(t, string(data), "loud")
}
