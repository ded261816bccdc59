package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, slog.LevelError, levelFromString("ERROR"))
	assert.Equal(t, slog.LevelWarn, levelFromString(" warning "))
	assert.Equal(t, slog.LevelInfo, levelFromString("info"))
	assert.Equal(t, slog.LevelDebug, levelFromString("verbose"))
}

func TestNewWithFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithFormat("info", "json", &buf)
	logger.Debug("hidden")
	logger.Info("upserted", "domain", "a.com")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "upserted", entry["msg"])
	assert.Equal(t, "a.com", entry["domain"])
}

func TestNewWithFormatText(t *testing.T) {
	var buf bytes.Buffer
	NewWithFormat("warn", "", &buf).Warn("slow chunk")
	assert.Contains(t, buf.String(), "msg=\"slow chunk\"")
}
