package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keboola/go-resource-fetch/pkg/logging"
)

func TestNew_Format(t *testing.T) {
	t.Parallel()

	var jsonOut, textOut, unknownOut bytes.Buffer
	logging.New("info", "json", &jsonOut).Info("hello")
	logging.New("info", "text", &textOut).Info("hello")
	logging.New("info", "xml", &unknownOut).Info("hello")

	assert.Contains(t, jsonOut.String(), `"level":"INFO"`)
	assert.Contains(t, jsonOut.String(), `"msg":"hello"`)
	assert.Contains(t, textOut.String(), "level=INFO")
	assert.Contains(t, textOut.String(), "msg=hello")
	assert.Contains(t, unknownOut.String(), `"level":"INFO"`)
}

func TestNew_Level(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	logger := logging.New("info", "json", &out)
	logger.Debug("filtered")
	assert.Empty(t, out.String())

	out.Reset()
	logger = logging.New("DEBUG", "json", &out)
	logger.Debug("message")
	assert.Contains(t, out.String(), `"msg":"message"`)
	assert.Contains(t, out.String(), `"source"`)

	out.Reset()
	logger = logging.New("error", "json", &out)
	logger.Warn("filtered")
	assert.Empty(t, out.String())
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("verbose"))
}

func TestNew_Redact(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	logger := logging.New("info", "json", &out)
	logger.Info("request",
		slog.String("authorization", "Bearer supersecret-token"),
		slog.String("token", "my-token-value"),
		slog.String("url", "/users/42"),
	)

	assert.NotContains(t, out.String(), "supersecret-token")
	assert.NotContains(t, out.String(), "my-token-value")
	assert.Contains(t, out.String(), "[REDACTED]")
	assert.Contains(t, out.String(), `"url":"/users/42"`)
}

func TestIsSensitiveHeader(t *testing.T) {
	t.Parallel()

	assert.True(t, logging.IsSensitiveHeader("Authorization"))
	assert.True(t, logging.IsSensitiveHeader("X-StorageApi-Token"))
	assert.False(t, logging.IsSensitiveHeader("Content-Type"))
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	assert.Same(t, slog.Default(), logging.FromContext(context.Background()))

	logger := logging.Discard()
	ctx := logging.WithLogger(context.Background(), logger)
	assert.Same(t, logger, logging.FromContext(ctx))
}
