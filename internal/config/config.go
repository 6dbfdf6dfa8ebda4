// Package config loads server settings from an optional config.yaml and
// TOPICROOMS_-prefixed environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/mcoot/topicrooms/internal/api"
	"github.com/mcoot/topicrooms/internal/model"
	"github.com/mcoot/topicrooms/internal/services/account"
	"github.com/mcoot/topicrooms/internal/services/room"
	"github.com/mcoot/topicrooms/internal/services/session"
	"github.com/mcoot/topicrooms/internal/storage/postgres"
	redisstorage "github.com/mcoot/topicrooms/internal/storage/redis"
	"github.com/mcoot/topicrooms/internal/validation"
)

// EnvPrefix prefixes every environment override, e.g. TOPICROOMS_SERVER_PORT
const EnvPrefix = "TOPICROOMS"

// TopicConfig is one entry of the seeded topic catalog
type TopicConfig struct {
	ID   int    `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// StorageConfig selects the persistence backends
type StorageConfig struct {
	// Type is "memory", "redis" or "postgres"
	Type string `mapstructure:"type"`
	// Sessions is "memory" or "redis"; empty follows Type
	Sessions string `mapstructure:"sessions"`
}

// LogConfig controls the JSON log handler
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SlogLevel parses Level, falling back to info
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// AppConfig is the full server configuration
type AppConfig struct {
	Server     api.ServerConfig     `mapstructure:"server"`
	Log        LogConfig            `mapstructure:"log"`
	Storage    StorageConfig        `mapstructure:"storage"`
	Redis      redisstorage.Config  `mapstructure:"redis"`
	Postgres   postgres.Config      `mapstructure:"postgres"`
	Session    session.Config       `mapstructure:"session"`
	Hasher     account.HasherConfig `mapstructure:"hasher"`
	Validation validation.Rules     `mapstructure:"validation"`
	Rooms      room.Config          `mapstructure:"rooms"`
	Topics     []TopicConfig        `mapstructure:"topics"`
}

// ModelTopics converts the configured topics
func (c *AppConfig) ModelTopics() []model.Topic {
	topics := make([]model.Topic, len(c.Topics))
	for i, t := range c.Topics {
		topics[i] = model.Topic{ID: model.TopicID(t.ID), Name: t.Name}
	}
	return topics
}

// Validate rejects settings the server cannot start with
func (c *AppConfig) Validate() error {
	switch c.Storage.Type {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("storage.type must be memory, redis or postgres, got %q", c.Storage.Type)
	}
	switch c.Storage.Sessions {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("storage.sessions must be memory or redis, got %q", c.Storage.Sessions)
	}
	seen := make(map[int]bool, len(c.Topics))
	for _, t := range c.Topics {
		if t.ID <= 0 || strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("topic %d: id must be positive and name non-empty", t.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("topic %d: duplicate id", t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// Load reads config.yaml from the working directory or ./config, then applies
// environment overrides. A missing file is not an error.
func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	return load(v)
}

// LoadFile reads an explicit config file
func LoadFile(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*AppConfig, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	server := api.DefaultServerConfig()
	v.SetDefault("server.host", server.Host)
	v.SetDefault("server.port", server.Port)
	v.SetDefault("server.read_timeout", server.ReadTimeout)
	v.SetDefault("server.read_header_timeout", server.ReadHeaderTimeout)
	v.SetDefault("server.write_timeout", server.WriteTimeout)
	v.SetDefault("server.idle_timeout", server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", server.ShutdownTimeout)

	v.SetDefault("log.level", "info")

	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.sessions", "")

	redisCfg := redisstorage.DefaultConfig()
	v.SetDefault("redis.url", redisCfg.URL)
	v.SetDefault("redis.pool_size", redisCfg.PoolSize)
	v.SetDefault("redis.min_idle_conns", redisCfg.MinIdleConns)
	v.SetDefault("redis.key_prefix", redisCfg.KeyPrefix)

	pgCfg := postgres.DefaultConfig()
	v.SetDefault("postgres.url", pgCfg.URL)
	v.SetDefault("postgres.max_conns", pgCfg.MaxConns)
	v.SetDefault("postgres.auto_migrate", pgCfg.AutoMigrate)

	sessCfg := session.DefaultConfig()
	v.SetDefault("session.ttl", sessCfg.TTL)
	v.SetDefault("session.cleanup_interval", sessCfg.CleanupInterval)

	hasherCfg := account.DefaultHasherConfig()
	v.SetDefault("hasher.algorithm", hasherCfg.Algorithm)
	v.SetDefault("hasher.bcrypt_cost", hasherCfg.BcryptCost)

	rules := validation.DefaultRules()
	v.SetDefault("validation.id_patterns", rules.IDPatterns)
	v.SetDefault("validation.password_patterns", rules.PasswordPatterns)

	roomCfg := room.DefaultConfig()
	v.SetDefault("rooms.max_name_length", roomCfg.MaxNameLength)
	v.SetDefault("rooms.default_page_size", roomCfg.DefaultPageSize)
	v.SetDefault("rooms.max_page_size", roomCfg.MaxPageSize)

	v.SetDefault("topics", DefaultTopics())
}

// DefaultTopics is the catalog seeded when none is configured
func DefaultTopics() []map[string]any {
	names := []string{"General", "Technology", "Games", "Music", "Sports", "Movies"}
	topics := make([]map[string]any, len(names))
	for i, name := range names {
		topics[i] = map[string]any{"id": i + 1, "name": name}
	}
	return topics
}
