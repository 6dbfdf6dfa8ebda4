package errutil

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/topicrooms/internal/testutil"
)

func captureLog(t *testing.T, fn func(*slog.Logger)) map[string]any {
	t.Helper()
	logger, logs := testutil.CaptureLogger()
	fn(logger)
	return logs.Last(t)
}

func TestLogError_OopsError(t *testing.T) {
	err := oops.Code("ROOM_CREATE_FAILED").With("room_id", "01A").Wrap(errors.New("connection refused"))

	entry := captureLog(t, func(l *slog.Logger) {
		LogError(l, "create room", err, "operation", "createRoom")
	})

	assert.Equal(t, "create room", entry["msg"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "ROOM_CREATE_FAILED", entry["code"])
	assert.Equal(t, "createRoom", entry["operation"])
	assert.Contains(t, entry["error"], "connection refused")
	require.IsType(t, map[string]any{}, entry["context"])
	assert.Equal(t, "01A", entry["context"].(map[string]any)["room_id"])
}

func TestLogError_PlainError(t *testing.T) {
	entry := captureLog(t, func(l *slog.Logger) {
		LogError(l, "lookup failed", errors.New("boom"))
	})

	assert.Equal(t, "boom", entry["error"])
	assert.NotContains(t, entry, "code")
}
