package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, dir string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	return path
}

func TestLoad_MissingFileCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.json")

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, Default(), settings)

	// The file was materialized on disk with the default values.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"target_folder": "data"`)
	assert.Contains(t, string(data), `"large_file_threshold_mb": 10`)
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeSettings(t, t.TempDir(), []byte(`{
		"target_folder": "scans",
		"large_file_threshold_mb": 25,
		"log_level": "warning"
	}`))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "scans", settings.TargetFolder)
	assert.Equal(t, 25, settings.LargeFileThresholdMB)
	assert.Equal(t, "WARNING", settings.LogLevel)
}

func TestLoad_ThresholdCoercion(t *testing.T) {
	t.Run("numeric string", func(t *testing.T) {
		path := writeSettings(t, t.TempDir(), []byte(`{"large_file_threshold_mb": " 42 "}`))

		settings, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 42, settings.LargeFileThresholdMB)
	})

	t.Run("float", func(t *testing.T) {
		path := writeSettings(t, t.TempDir(), []byte(`{"large_file_threshold_mb": 12.0}`))

		settings, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 12, settings.LargeFileThresholdMB)
	})

	t.Run("uncoercible", func(t *testing.T) {
		path := writeSettings(t, t.TempDir(), []byte(`{"large_file_threshold_mb": [1]}`))

		_, err := Load(path)
		assert.Equal(t, ErrCodeBadType, Code(err))
	})
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeSettings(t, t.TempDir(), []byte(`{"target_folder": `))

	_, err := Load(path)
	assert.Equal(t, ErrCodeInvalid, Code(err))
	assert.ErrorContains(t, err, "not valid JSON")
}

func TestLoad_WrongFieldTypes(t *testing.T) {
	t.Run("target_folder", func(t *testing.T) {
		path := writeSettings(t, t.TempDir(), []byte(`{"target_folder": 7}`))

		_, err := Load(path)
		assert.Equal(t, ErrCodeBadType, Code(err))
	})

	t.Run("log_level", func(t *testing.T) {
		path := writeSettings(t, t.TempDir(), []byte(`{"log_level": true}`))

		_, err := Load(path)
		assert.Equal(t, ErrCodeBadType, Code(err))
	})
}

func TestLoad_UnsupportedLogLevelFallsBack(t *testing.T) {
	path := writeSettings(t, t.TempDir(), []byte(`{"log_level": "VERBOSE"}`))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "INFO", settings.LogLevel)
}

func TestSettings_Level(t *testing.T) {
	cases := map[string]slog.Level{
		"DEBUG":    slog.LevelDebug,
		"INFO":     slog.LevelInfo,
		"WARNING":  slog.LevelWarn,
		"ERROR":    slog.LevelError,
		"CRITICAL": LevelCritical,
	}

	for name, want := range cases {
		assert.Equal(t, want, Settings{LogLevel: name}.Level(), "level %s", name)
	}

	// Unknown values read as Info rather than silently Debug.
	assert.Equal(t, slog.LevelInfo, Settings{LogLevel: "bogus"}.Level())
}

func TestCode_NonConfigError(t *testing.T) {
	assert.Empty(t, Code(os.ErrNotExist))
	assert.Empty(t, Code(nil))
}
