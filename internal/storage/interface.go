package storage

import (
	"context"
	"time"

	"github.com/mcoot/topicrooms/internal/model"
)

// Storage defines the interface for data persistence.
//
// Implementations enforce uniqueness themselves: CreatePlayer returns
// model.ErrPlayerExists and CreateRoom returns model.ErrRoomNameTaken when a
// concurrent writer got there first, regardless of any check the caller made.
type Storage interface {
	// Player operations
	CreatePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	UpdatePlayerPassword(ctx context.Context, id model.PlayerID, passwordHash string, updatedAt time.Time) error
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Topic operations
	SaveTopics(ctx context.Context, topics []model.Topic) error
	ListTopics(ctx context.Context) ([]model.Topic, error)
	GetTopic(ctx context.Context, id model.TopicID) (*model.Topic, error)

	// Room operations
	CreateRoom(ctx context.Context, room *model.Room) error
	RoomNameExists(ctx context.Context, name string) (bool, error)
	ListRooms(ctx context.Context, q model.RoomQuery) ([]*model.Room, error)
	GetRoomsByIDs(ctx context.Context, ids []model.RoomID) ([]*model.Room, error)
	CountActiveRoomsByTopic(ctx context.Context, at time.Time) (map[model.TopicID]int, error)
}
