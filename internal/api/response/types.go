package response

import (
	"time"

	"github.com/mcoot/topicrooms/internal/model"
	"github.com/mcoot/topicrooms/internal/services/room"
	"github.com/mcoot/topicrooms/internal/services/session"
	"github.com/mcoot/topicrooms/internal/status"
)

// Player represents a player identity in API responses
type Player struct {
	PlayerID  string    `json:"playerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlayerFromIdentity converts a model.PlayerIdentity
func PlayerFromIdentity(p model.PlayerIdentity) Player {
	return Player{
		PlayerID:  string(p.ID),
		CreatedAt: p.CreatedAt,
	}
}

// Login is the payload of a successful login
type Login struct {
	Message      string    `json:"message"`
	Player       Player    `json:"player"`
	SessionToken string    `json:"sessionToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// LoginFromSession builds the login payload
func LoginFromSession(code status.Login, s *session.Session) Login {
	return Login{
		Message:      code.Message(),
		Player:       PlayerFromIdentity(s.Player),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Me is the payload of GET /player/me
type Me struct {
	Player    Player    `json:"player"`
	ExpiresAt time.Time `json:"sessionExpiresAt"`
}

// Topic represents a topic
type Topic struct {
	TopicID int    `json:"topicId"`
	Name    string `json:"name"`
}

// TopicsFromModel converts a topic list
func TopicsFromModel(topics []model.Topic) []Topic {
	out := make([]Topic, len(topics))
	for i, t := range topics {
		out[i] = Topic{TopicID: int(t.ID), Name: t.Name}
	}
	return out
}

// TopicRoomCount is a topic with its active room count
type TopicRoomCount struct {
	TopicID   int    `json:"topicId"`
	Name      string `json:"name"`
	RoomCount int    `json:"roomCount"`
}

// TopicRoomCountsFromModel converts room counts
func TopicRoomCountsFromModel(counts []model.TopicRoomCount) []TopicRoomCount {
	out := make([]TopicRoomCount, len(counts))
	for i, c := range counts {
		out[i] = TopicRoomCount{TopicID: int(c.Topic.ID), Name: c.Topic.Name, RoomCount: c.Count}
	}
	return out
}

// Room represents a room
type Room struct {
	RoomID    string    `json:"roomId"`
	RoomName  string    `json:"roomName"`
	PlayerID  string    `json:"playerId"`
	TopicID   int       `json:"topicId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	CreatedAt time.Time `json:"createdAt"`
}

// RoomFromModel converts a model.Room
func RoomFromModel(r *model.Room) Room {
	return Room{
		RoomID:    string(r.ID),
		RoomName:  r.Name,
		PlayerID:  string(r.PlayerID),
		TopicID:   int(r.TopicID),
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		CreatedAt: r.CreatedAt,
	}
}

// RoomsFromModel converts a room slice, never returning nil
func RoomsFromModel(rooms []*model.Room) []Room {
	out := make([]Room, len(rooms))
	for i, r := range rooms {
		out[i] = RoomFromModel(r)
	}
	return out
}

// CreateRoom is the payload of a successful createRoom
type CreateRoom struct {
	Message string `json:"message"`
	Room    Room   `json:"room"`
}

// RoomPage is one page of a room listing
type RoomPage struct {
	Rooms      []Room `json:"rooms"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// RoomPageFromService converts a room.RoomPage
func RoomPageFromService(p *room.RoomPage) RoomPage {
	return RoomPage{
		Rooms:      RoomsFromModel(p.Rooms),
		NextCursor: p.NextCursor,
	}
}

// StatusFamily lists one operation's status codes
type StatusFamily struct {
	Operation string       `json:"operation"`
	Codes     []StatusCode `json:"codes"`
}

// StatusCode is one entry of the status code registry
type StatusCode struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// StatusFamiliesFromRegistry converts the registry listing
func StatusFamiliesFromRegistry(families []status.FamilyInfo) []StatusFamily {
	out := make([]StatusFamily, len(families))
	for i, f := range families {
		codes := make([]StatusCode, len(f.Codes))
		for j, c := range f.Codes {
			codes[j] = StatusCode{Code: c.Value, Name: c.Name, Message: c.Message}
		}
		out[i] = StatusFamily{Operation: string(f.Family), Codes: codes}
	}
	return out
}
