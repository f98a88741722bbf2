package logger

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/migadu/exmdb/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), "level %q", tt.in)
	}
}

func TestInitializeFileOutput(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		globalLogger = nil
		slog.SetDefault(prev)
	})

	path := filepath.Join(t.TempDir(), "exmdb.log")
	f, err := Initialize(config.LoggingConfig{Output: path, Format: "json", Level: "warn"})
	require.NoError(t, err)
	require.NotNil(t, f)

	Info("dropped", "homedir", "/d/a")
	Warn("store ping failed", "homedir", "/d/a")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry), "expected exactly one JSON line, got %q", data)
	assert.Equal(t, "store ping failed", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "/d/a", entry["homedir"])
}

func TestInitializeBadFilePath(t *testing.T) {
	_, err := Initialize(config.LoggingConfig{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

func TestGetFallsBackToDefault(t *testing.T) {
	globalLogger = nil
	assert.Same(t, slog.Default(), Get())
}
