package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	assert.NotNil(t, logger)
	assert.IsType(t, &zerologLogger{}, logger)
}

func TestLevels(t *testing.T) {
	t.Run("debug is dropped at info level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(&buf, "info")
		logger.Debug("hidden")
		logger.Info("shown")

		lines := decodeLines(t, &buf)
		require.Len(t, lines, 1)
		assert.Equal(t, "shown", lines[0]["message"])
		assert.Equal(t, "info", lines[0]["level"])
	})

	t.Run("debug level emits everything", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(&buf, "DEBUG")
		logger.Debug("d")
		logger.Warn("w")
		logger.Error("e")

		lines := decodeLines(t, &buf)
		require.Len(t, lines, 3)
		assert.Equal(t, "debug", lines[0]["level"])
		assert.Equal(t, "warn", lines[1]["level"])
		assert.Equal(t, "error", lines[2]["level"])
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(&buf, "chatty")
		logger.Debug("hidden")
		assert.Empty(t, buf.String())
	})
}

func TestWithField(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithWriter(&buf, "info")

	base.WithField("table", "transactions").Info("query")
	base.Info("plain")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "transactions", lines[0]["table"])
	_, leaked := lines[1]["table"]
	assert.False(t, leaked)
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithWriter(&buf, "info")

	base.WithFields(map[string]interface{}{
		"user_id": "u1",
		"status":  404,
	}).Warn("missing")
	base.Info("plain")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "u1", lines[0]["user_id"])
	assert.Equal(t, float64(404), lines[0]["status"])
	_, leaked := lines[1]["user_id"]
	assert.False(t, leaked)
}
