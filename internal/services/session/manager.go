package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/topicrooms/internal/dependencies/clock"
	"github.com/mcoot/topicrooms/internal/dependencies/random"
	"github.com/mcoot/topicrooms/internal/model"
)

const tokenLength = 22

// Config holds session lifetime settings
type Config struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// DefaultConfig returns the default session settings
func DefaultConfig() Config {
	return Config{
		TTL:             24 * time.Hour,
		CleanupInterval: 5 * time.Minute,
	}
}

// Manager creates, resolves and destroys sessions
type Manager struct {
	store  Store
	clock  clock.Clock
	random random.Random
	cfg    Config
	logger *slog.Logger
}

// NewManager creates a session manager over the given store
func NewManager(store Store, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	return &Manager{
		store:  store,
		clock:  clk,
		random: rnd,
		cfg:    cfg,
		logger: logger,
	}
}

// Login mints a fresh token and binds the identity to it
func (m *Manager) Login(ctx context.Context, identity model.PlayerIdentity) (*Session, error) {
	token := TokenPrefix + m.random.String(tokenLength, random.URLSafeAlphabet)
	return m.Bind(ctx, token, identity)
}

// Rotate retires the binding on previous, if any, then mints a fresh token
// for the identity. A token never outlives a later login made with it.
func (m *Manager) Rotate(ctx context.Context, previous string, identity model.PlayerIdentity) (*Session, error) {
	if previous != "" {
		if err := m.store.Delete(ctx, previous); err != nil && !errors.Is(err, ErrNoSession) {
			return nil, err
		}
	}
	return m.Login(ctx, identity)
}

// Bind associates the identity with the token, replacing any previous binding
func (m *Manager) Bind(ctx context.Context, token string, identity model.PlayerIdentity) (*Session, error) {
	now := m.clock.Now()
	sess := &Session{
		Token:     token,
		Player:    identity,
		CreatedAt: now,
		ExpiresAt: now.Add(m.cfg.TTL),
	}
	if err := m.store.Save(ctx, sess, m.cfg.TTL); err != nil {
		return nil, err
	}
	return sess, nil
}

// Current returns the live session for the token, or ErrNoSession
func (m *Manager) Current(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	sess, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess.Expired(m.clock.Now()) {
		if err := m.store.Delete(ctx, token); err != nil && !errors.Is(err, ErrNoSession) {
			m.logger.Warn("failed to remove expired session", "error", err)
		}
		return nil, ErrNoSession
	}
	return sess, nil
}

// Require is Current for privileged operations: a missing session is ErrUnauthenticated
func (m *Manager) Require(ctx context.Context, token string) (*Session, error) {
	sess, err := m.Current(ctx, token)
	if errors.Is(err, ErrNoSession) {
		return nil, ErrUnauthenticated
	}
	return sess, err
}

// Destroy removes the binding for the token. Returns ErrNoSession if none existed.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoSession
	}
	return m.store.Delete(ctx, token)
}

// DestroyPlayer removes every session bound to the player
func (m *Manager) DestroyPlayer(ctx context.Context, playerID model.PlayerID) error {
	n, err := m.store.DeleteForPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	if n > 0 {
		m.logger.Info("destroyed player sessions", "player_id", playerID, "count", n)
	}
	return nil
}

// CleanExpired removes sessions whose expiry has passed
func (m *Manager) CleanExpired(ctx context.Context) (int, error) {
	return m.store.DeleteExpired(ctx, m.clock.Now())
}

// StartJanitor runs CleanExpired every CleanupInterval until the returned
// stop function is called. stop blocks until the goroutine has exited.
func (m *Manager) StartJanitor() (stop func()) {
	interval := m.cfg.CleanupInterval
	if interval <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := m.CleanExpired(ctx)
				if err != nil {
					m.logger.Error("session cleanup failed", "error", err)
					continue
				}
				if n > 0 {
					m.logger.Debug("expired sessions removed", "count", n)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
}
