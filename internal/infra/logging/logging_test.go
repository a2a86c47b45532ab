package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warn "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew(t *testing.T) {
	t.Run("json outside development", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, "production", slog.LevelInfo).Info("mutual group created", "plan", "Standard")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "mutual group created", entry["msg"])
		assert.Equal(t, "Standard", entry["plan"])
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, "production", slog.LevelWarn).Info("dropped")
		assert.Empty(t, buf.String())
	})

	t.Run("tint in development", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, "development", slog.LevelInfo).Info("mutual group created", "plan", "Mobile")
		assert.Contains(t, buf.String(), "mutual group created")
		assert.Contains(t, buf.String(), "Mobile")
	})
}
