package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is a registered account
type Player struct {
	ID           PlayerID
	PasswordHash string // output of the configured hasher, never the raw password
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PlayerIdentity is the public view of a player that gets bound into a session
type PlayerIdentity struct {
	ID        PlayerID
	CreatedAt time.Time
}

// Identity returns the public identity for the player
func (p *Player) Identity() PlayerIdentity {
	return PlayerIdentity{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
	}
}
