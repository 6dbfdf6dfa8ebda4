package model

import "time"

// RoomID is a ULID string, so lexicographic order is creation order
type RoomID string

// Room is a named, topic-scoped session window owned by a player
type Room struct {
	ID        RoomID
	Name      string
	PlayerID  PlayerID
	TopicID   TopicID
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}

// IsActive reports whether the room window has not yet ended at t
func (r *Room) IsActive(t time.Time) bool {
	return r.EndTime.After(t)
}

// RoomQuery selects a page of rooms ordered by ID
type RoomQuery struct {
	TopicID *TopicID // nil means all topics
	After   RoomID   // exclusive lower bound, empty for the first page
	Limit   int
}

// Matches reports whether the room satisfies the query's filter and cursor
// (the limit is applied by the caller)
func (q RoomQuery) Matches(r *Room) bool {
	if q.TopicID != nil && r.TopicID != *q.TopicID {
		return false
	}
	return q.After == "" || r.ID > q.After
}
