package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_ConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithConsole("", zapcore.AddSync(&buf))
	logger.Info("database connected", zap.String("path", "dns_filter.db"))
	require.NoError(t, logger.Sync())

	assert.Contains(t, buf.String(), "database connected")
	assert.Contains(t, buf.String(), "dns_filter.db")
}

func TestNew_WritesJSONFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "server-logs")
	var console bytes.Buffer
	logger := newWithConsole(dir, zapcore.AddSync(&console))
	logger.Debug("console only")
	logger.Warn("query failed", zap.String("report", "stats"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "query failed", entry["message"])
	assert.Equal(t, "stats", entry["report"])
	assert.Contains(t, entry, "timestamp")

	assert.Contains(t, console.String(), "console only")
}
