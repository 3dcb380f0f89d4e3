package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDir points the package at a temp log directory and resets global state.
func setupTestDir(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()

	origLogDir, origInitErr := logDir, initErr
	origRunID := runID

	initOnce = sync.Once{}
	initErr = nil
	runID = ""
	runIDOnce = sync.Once{}
	SetDirectory(tempDir)

	t.Cleanup(func() {
		logDir, initErr = origLogDir, origInitErr
		runID = origRunID
		SetLevel(LevelDebug)
	})

	return tempDir
}

func TestNewLogger_WritesToRunFile(t *testing.T) {
	dir := setupTestDir(t)

	logger, err := NewLogger("capture")
	require.NoError(t, err)
	defer logger.Close()

	logger.Infof("captured %d guests", 12)

	assert.Equal(t, dir, filepath.Dir(logger.LogPath()))
	assert.True(t, strings.HasSuffix(logger.LogPath(), "-guestlist.log"))

	data, err := os.ReadFile(logger.LogPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[capture] [INFO] captured 12 guests")
}

func TestNewLogger_SharesRunID(t *testing.T) {
	setupTestDir(t)

	a, err := NewLogger("auth")
	require.NoError(t, err)
	defer a.Close()
	b, err := NewLogger("discovery")
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, a.RunID(), b.RunID())
	assert.Equal(t, a.LogPath(), b.LogPath())
	assert.Equal(t, RunID(), a.RunID())
}

func TestLogger_LevelFiltering(t *testing.T) {
	setupTestDir(t)
	SetLevel(LevelWarn)

	logger, err := NewLogger("export")
	require.NoError(t, err)
	defer logger.Close()

	logger.Debugf("hidden debug")
	logger.Infof("hidden info")
	logger.Warnf("shown warning")
	logger.Errorf("shown error")

	data, err := os.ReadFile(logger.LogPath())
	require.NoError(t, err)
	content := string(data)

	assert.NotContains(t, content, "hidden")
	assert.Contains(t, content, "[WARN] shown warning")
	assert.Contains(t, content, "[ERROR] shown error")
}

func TestLogger_With(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("browser")
	require.NoError(t, err)
	defer logger.Close()

	logger.With("watch").Infof("armed")

	data, err := os.ReadFile(logger.LogPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[browser.watch] [INFO] armed")
}

func TestLogger_CloseIsIdempotent(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("main")
	require.NoError(t, err)

	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard("test")
	logger.Errorf("dropped")
	assert.Empty(t, logger.LogPath())
}
