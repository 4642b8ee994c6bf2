package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmsqlkit/dmtrace/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestSetup(t *testing.T) {
	t.Run("Expect: file sink to receive JSON entries", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dmtrace.log")
		logger, guard, err := Setup(config.LogConfig{Level: "info", File: path})
		require.NoError(t, err)

		logger.Info("run finished", "records", 42)
		require.NoError(t, guard.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(data, &entry))
		assert.Equal(t, "run finished", entry["msg"])
		assert.Equal(t, float64(42), entry["records"])
	})

	t.Run("Expect: level threshold honored", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dmtrace.log")
		logger, guard, err := Setup(config.LogConfig{Level: "warn", File: path})
		require.NoError(t, err)

		logger.Info("suppressed")
		logger.Warn("kept")
		require.NoError(t, guard.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "suppressed")
		assert.Contains(t, string(data), "kept")
	})

	t.Run("Expect: no sinks to yield a working discard logger", func(t *testing.T) {
		logger, guard, err := Setup(config.LogConfig{Level: "info"})
		require.NoError(t, err)
		logger.Info("goes nowhere")
		assert.NoError(t, guard.Close())
	})

	t.Run("Expect: bad level to fail setup", func(t *testing.T) {
		_, _, err := Setup(config.LogConfig{Level: "loud"})
		assert.Error(t, err)
	})
}
