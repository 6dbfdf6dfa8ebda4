package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/topicrooms/internal/dependencies/clock"
	"github.com/mcoot/topicrooms/internal/dependencies/random"
	"github.com/mcoot/topicrooms/internal/metrics"
	"github.com/mcoot/topicrooms/internal/model"
	"github.com/mcoot/topicrooms/internal/services/account"
	"github.com/mcoot/topicrooms/internal/services/catalog"
	"github.com/mcoot/topicrooms/internal/services/room"
	"github.com/mcoot/topicrooms/internal/services/session"
	"github.com/mcoot/topicrooms/internal/storage"
	"github.com/mcoot/topicrooms/internal/storage/memory"
	"github.com/mcoot/topicrooms/internal/storage/postgres"
	redisstorage "github.com/mcoot/topicrooms/internal/storage/redis"
	"github.com/mcoot/topicrooms/internal/validation"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	Metrics *metrics.Metrics

	// Services
	Sessions *session.Manager
	Accounts *account.Service
	Catalog  *catalog.Service
	Rooms    *room.Service

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// SessionStoreType selects the session backend ("memory" or "redis")
	// If empty, sessions live in Redis when StorageType is "redis" and in memory otherwise
	SessionStoreType string
	// RedisConfig holds Redis connection settings (required if either backend is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds database settings (required if StorageType is "postgres")
	PostgresConfig *postgres.Config

	// Zero values fall back to each package's defaults
	SessionConfig   session.Config
	HasherConfig    account.HasherConfig
	ValidationRules validation.Rules
	RoomConfig      room.Config

	// Topics are seeded into storage by New
	Topics []model.Topic
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (app *App, err error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var closers []io.Closer
	defer func() {
		if err != nil {
			_ = closeAll(closers)
		}
	}()

	// Create storage based on type
	var store storage.Storage
	var redisClient *redis.Client
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, redisStore)
		store = redisStore
		redisClient = redisStore.Client()
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := postgres.New(ctx, *cfg.PostgresConfig)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pgStore)
		store = pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	sessionType := cfg.SessionStoreType
	if sessionType == "" {
		sessionType = StorageTypeMemory
		if storageType == StorageTypeRedis {
			sessionType = StorageTypeRedis
		}
	}

	var sessions session.Store
	switch sessionType {
	case StorageTypeMemory:
		sessions = session.NewMemoryStore()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when SessionStoreType is redis")
		}
		if redisClient == nil {
			sessionRedis, err := redisstorage.New(*cfg.RedisConfig)
			if err != nil {
				return nil, fmt.Errorf("connect redis: %w", err)
			}
			closers = append(closers, sessionRedis)
			redisClient = sessionRedis.Client()
		}
		sessions = session.NewRedisStore(redisClient, cfg.RedisConfig.KeyPrefix)
	default:
		return nil, errors.New("invalid SessionStoreType: must be 'memory' or 'redis'")
	}

	hasherCfg := cfg.HasherConfig
	if hasherCfg.Algorithm == "" {
		hasherCfg = account.DefaultHasherConfig()
	}
	hasher, err := account.NewHasher(hasherCfg)
	if err != nil {
		return nil, err
	}

	rules := cfg.ValidationRules
	if len(rules.IDPatterns) == 0 && len(rules.PasswordPatterns) == 0 {
		rules = validation.DefaultRules()
	}
	validator, err := validation.NewValidator(rules)
	if err != nil {
		return nil, err
	}

	app = newWithDependencies(dependencies{
		store:     store,
		sessions:  sessions,
		clock:     clock.New(),
		random:    random.New(),
		hasher:    hasher,
		validator: validator,
		session:   cfg.SessionConfig,
		room:      cfg.RoomConfig,
		logger:    logger,
	})
	app.closers = closers

	if err := app.Catalog.SeedTopics(ctx, cfg.Topics); err != nil {
		return nil, fmt.Errorf("seed topics: %w", err)
	}

	return app, nil
}

// Close releases storage connections
func (a *App) Close() error {
	return closeAll(a.closers)
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// dependencies are the pieces newWithDependencies wires together
type dependencies struct {
	store     storage.Storage
	sessions  session.Store
	clock     clock.Clock
	random    random.Random
	hasher    account.PasswordHasher
	validator *validation.Validator
	session   session.Config
	room      room.Config
	logger    *slog.Logger
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(d dependencies) *App {
	sessionManager := session.NewManager(d.sessions, d.clock, d.random, d.session, d.logger)
	accountService := account.New(d.store, sessionManager, d.validator, d.hasher, d.clock, d.logger)
	catalogService := catalog.New(d.store, d.clock, d.logger)
	roomService := room.New(d.store, d.clock, d.random, d.room, d.logger)

	return &App{
		Storage:  d.store,
		Clock:    d.clock,
		Random:   d.random,
		Metrics:  metrics.New(),
		Sessions: sessionManager,
		Accounts: accountService,
		Catalog:  catalogService,
		Rooms:    roomService,
	}
}
