package logging_test

import (
	"bytes"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"testing"

	"escrow/internal/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandler_RenamesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewHandler(&buf, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("escrow released", "escrowId", "e-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "INFO", line["severity"])
	assert.Equal(t, "escrow released", line["message"])
	assert.Equal(t, "e-1", line["escrowId"])
	assert.Contains(t, line, "timestamp")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel(""))
}

func TestSetup_WritesToRotatingFile(t *testing.T) {
	path := t.TempDir() + "/escrow.log"
	logger, closer := logging.Setup(logging.Options{Service: "escrow", Env: "test", File: path, MaxSizeMB: 1})
	t.Cleanup(func() {
		_ = closer.Close()
		log.SetOutput(os.Stderr)
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	})

	logger.Info("started")
	require.NoError(t, closer.Close())

	assert.FileExists(t, path)
}
