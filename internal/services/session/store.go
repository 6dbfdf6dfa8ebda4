package session

import (
	"context"
	"time"

	"github.com/mcoot/topicrooms/internal/model"
)

// Store persists sessions. Implementations must be safe for concurrent use
// and apply each per-token mutation atomically.
type Store interface {
	// Save writes the session, replacing any existing binding for its token.
	// ttl is a hint for stores that expire keys natively.
	Save(ctx context.Context, sess *Session, ttl time.Duration) error

	// Get returns ErrNoSession if the token is unknown
	Get(ctx context.Context, token string) (*Session, error)

	// Delete returns ErrNoSession if nothing was bound to the token
	Delete(ctx context.Context, token string) error

	// DeleteForPlayer removes every session bound to the player and
	// reports how many were removed
	DeleteForPlayer(ctx context.Context, playerID model.PlayerID) (int, error)

	// DeleteExpired removes sessions that expired before now
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
