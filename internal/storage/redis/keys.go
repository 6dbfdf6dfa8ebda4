package redis

import (
	"fmt"

	"github.com/mcoot/topicrooms/internal/model"
)

// keys builds every Redis key used by the store under one prefix
type keys struct {
	prefix string
}

// player returns the key for a Player record
func (k keys) player(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", k.prefix, id)
}

// topics returns the HASH of topic id -> Topic
func (k keys) topics() string {
	return fmt.Sprintf("%s:topics", k.prefix)
}

// room returns the key for a Room record
func (k keys) room(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", k.prefix, id)
}

// roomName returns the key for the room name -> room id index
func (k keys) roomName(name string) string {
	return fmt.Sprintf("%s:idx:room_name:%s", k.prefix, name)
}

// rooms returns the ZSET of every room id (score 0, ordered lexically)
func (k keys) rooms() string {
	return fmt.Sprintf("%s:idx:rooms", k.prefix)
}

// roomsByTopic returns the ZSET of room ids for a single topic
func (k keys) roomsByTopic(topicID model.TopicID) string {
	return fmt.Sprintf("%s:idx:rooms_by_topic:%d", k.prefix, topicID)
}
