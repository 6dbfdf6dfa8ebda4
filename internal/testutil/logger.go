package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// NopLogger returns a logger that discards all output.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// LogCapture collects JSON log lines written by a logger from CaptureLogger.
type LogCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *LogCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// String returns everything logged so far.
func (c *LogCapture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Entries decodes each logged line, failing the test on malformed output.
func (c *LogCapture) Entries(t testing.TB) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(c.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("malformed log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

// Last returns the most recent entry, failing the test if nothing was logged.
func (c *LogCapture) Last(t testing.TB) map[string]any {
	t.Helper()
	entries := c.Entries(t)
	if len(entries) == 0 {
		t.Fatal("no log entries captured")
	}
	return entries[len(entries)-1]
}

// CaptureLogger returns a debug-level JSON logger whose output is kept for assertions.
func CaptureLogger() (*slog.Logger, *LogCapture) {
	c := &LogCapture{}
	return slog.New(slog.NewJSONHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug})), c
}
