package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relink.log")

	logger, err := New(Options{Level: "info", Format: FormatJSON, OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Info("relinked", zap.Int("count", 2))
	logger.Debug("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"relinked"`)
	assert.Contains(t, string(data), `"count":2`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_Defaults(t *testing.T) {
	logger, err := New(Options{})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestNew_Writer(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: FormatConsole, Writer: &buf})
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Warn("mapping file does not exist, using defaults", zap.String("path", "/x"))

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "mapping file does not exist")
	assert.Contains(t, buf.String(), "/x")
}
