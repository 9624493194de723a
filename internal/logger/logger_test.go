package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "catering", LevelInfo)

	log.Info("req-1", "order_create", "order created")
	log.Error("req-2", "order_create", "insert failed", errors.New("disk full"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "INFO", first.Level)
	assert.Equal(t, "catering", first.Service)
	assert.Equal(t, "order_create", first.Action)
	assert.Equal(t, "req-1", first.RequestID)
	assert.Nil(t, first.Error)

	var second LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "ERROR", second.Level)
	require.NotNil(t, second.Error)
	assert.Equal(t, "disk full", second.Error.Msg)
}

func TestLoggerMinimumLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "catering", LevelWarn)

	log.Debug("", "a", "dropped")
	log.Info("", "b", "dropped")
	log.Warn("", "c", "kept")

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), `"action":"c"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

func TestNewRequestIDUnique(t *testing.T) {
	assert.NotEqual(t, NewRequestID(), NewRequestID())
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
}
