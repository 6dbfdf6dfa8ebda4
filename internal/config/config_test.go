package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/topicrooms/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
	assert.Equal(t, "topicrooms", cfg.Redis.KeyPrefix)
	assert.True(t, cfg.Postgres.AutoMigrate)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "bcrypt", cfg.Hasher.Algorithm)
	assert.Equal(t, 50, cfg.Rooms.MaxNameLength)
	assert.Equal(t, 20, cfg.Rooms.DefaultPageSize)
	assert.Equal(t, 100, cfg.Rooms.MaxPageSize)
	assert.Len(t, cfg.Validation.PasswordPatterns, 3)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())

	topics := cfg.ModelTopics()
	require.Len(t, topics, 6)
	assert.Equal(t, model.Topic{ID: 1, Name: "General"}, topics[0])
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  write_timeout: 30s
storage:
  type: postgres
postgres:
  url: postgres://u:p@db:5432/rooms
  auto_migrate: false
session:
  ttl: 1h
topics:
  - id: 10
    name: Chess
  - id: 11
    name: Go
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "postgres", cfg.Storage.Type)
	assert.Equal(t, "postgres://u:p@db:5432/rooms", cfg.Postgres.URL)
	assert.False(t, cfg.Postgres.AutoMigrate)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, []model.Topic{{ID: 10, Name: "Chess"}, {ID: 11, Name: "Go"}}, cfg.ModelTopics())
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("TOPICROOMS_SERVER_PORT", "7000")
	t.Setenv("TOPICROOMS_STORAGE_TYPE", "redis")
	t.Setenv("TOPICROOMS_SESSION_TTL", "90m")

	cfg, err := LoadFile(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Storage.Type)
	assert.Equal(t, 90*time.Minute, cfg.Session.TTL)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown storage", "storage:\n  type: sqlite\n"},
		{"unknown session store", "storage:\n  sessions: postgres\n"},
		{"duplicate topic", "topics:\n  - id: 1\n    name: A\n  - id: 1\n    name: B\n"},
		{"unnamed topic", "topics:\n  - id: 1\n    name: ' '\n"},
		{"non-positive topic", "topics:\n  - id: 0\n    name: Zero\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSlogLevelFallback(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "loud"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "warn"}.SlogLevel())
}
