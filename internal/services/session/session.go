// Package session binds opaque tokens to authenticated player identities.
package session

import (
	"errors"
	"time"

	"github.com/mcoot/topicrooms/internal/model"
)

var (
	// ErrNoSession is returned when a token has no live binding
	ErrNoSession = errors.New("no active session")
	// ErrUnauthenticated is returned by privileged-operation guards
	ErrUnauthenticated = errors.New("unauthenticated")
)

// TokenPrefix marks session tokens so they are recognisable in logs and headers
const TokenPrefix = "sess_"

// Session is a token bound to exactly one player identity
type Session struct {
	Token     string               `json:"token"`
	Player    model.PlayerIdentity `json:"player"`
	CreatedAt time.Time            `json:"createdAt"`
	ExpiresAt time.Time            `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at t
func (s *Session) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// BelongsTo reports whether the session is bound to the given player
func (s *Session) BelongsTo(id model.PlayerID) bool {
	return s != nil && s.Player.ID == id
}
