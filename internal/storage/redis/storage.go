package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/topicrooms/internal/model"
	"github.com/mcoot/topicrooms/internal/storage"
)

// maxWatchRetries bounds optimistic transactions that keep losing a WATCH race
const maxWatchRetries = 10

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	keys   keys
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		keys:   keys{prefix: prefix},
	}
}

// Client exposes the underlying connection so other Redis-backed stores can share it
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, s.keys.player(player.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrPlayerExists
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, s.keys.player(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) UpdatePlayerPassword(ctx context.Context, id model.PlayerID, passwordHash string, updatedAt time.Time) error {
	key := s.keys.player(id)

	// WATCH guards against a concurrent delete between read and write
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrPlayerNotFound
			}
			return err
		}

		var player model.Player
		if err := json.Unmarshal(data, &player); err != nil {
			return err
		}
		player.PasswordHash = passwordHash
		player.UpdatedAt = updatedAt

		updated, err := json.Marshal(&player)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}, key)
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	n, err := s.client.Del(ctx, s.keys.player(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

// Topic operations

func (s *Storage) SaveTopics(ctx context.Context, topics []model.Topic) error {
	if len(topics) == 0 {
		return nil
	}

	values := make([]any, 0, len(topics)*2)
	for _, t := range topics {
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		values = append(values, strconv.Itoa(int(t.ID)), data)
	}
	return s.client.HSet(ctx, s.keys.topics(), values...).Err()
}

func (s *Storage) ListTopics(ctx context.Context) ([]model.Topic, error) {
	entries, err := s.client.HGetAll(ctx, s.keys.topics()).Result()
	if err != nil {
		return nil, err
	}

	topics := make([]model.Topic, 0, len(entries))
	for _, raw := range entries {
		var t model.Topic
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].ID < topics[j].ID })
	return topics, nil
}

func (s *Storage) GetTopic(ctx context.Context, id model.TopicID) (*model.Topic, error) {
	data, err := s.client.HGet(ctx, s.keys.topics(), strconv.Itoa(int(id))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrTopicNotFound
		}
		return nil, err
	}

	var topic model.Topic
	if err := json.Unmarshal(data, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

// Room operations

func (s *Storage) CreateRoom(ctx context.Context, room *model.Room) error {
	exists, err := s.RoomNameExists(ctx, room.Name)
	if err != nil {
		return err
	}
	if exists {
		return model.ErrRoomNameTaken
	}

	topicExists, err := s.client.HExists(ctx, s.keys.topics(), strconv.Itoa(int(room.TopicID))).Result()
	if err != nil {
		return err
	}
	if !topicExists {
		return model.ErrTopicNotFound
	}

	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	// The name index is claimed first; SETNX makes concurrent creators race on one key
	claimed, err := s.client.SetNX(ctx, s.keys.roomName(room.Name), string(room.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrRoomNameTaken
	}

	if err := s.insertRoom(ctx, room, data); err != nil {
		return s.releaseRoomName(ctx, room.Name, err)
	}
	return nil
}

// insertRoom writes the room only while the owner key exists; a concurrent
// player delete fails the WATCH and the existence check is repeated
func (s *Storage) insertRoom(ctx context.Context, room *model.Room, data []byte) error {
	owner := s.keys.player(room.PlayerID)
	write := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, owner).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return model.ErrPlayerNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.keys.room(room.ID), data, 0)
			member := redis.Z{Score: 0, Member: string(room.ID)}
			pipe.ZAdd(ctx, s.keys.rooms(), member)
			pipe.ZAdd(ctx, s.keys.roomsByTopic(room.TopicID), member)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.client.Watch(ctx, write, owner)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

// releaseRoomName frees a claimed name after a failed create. A failed
// release is joined to the cause since the name would otherwise stay taken.
func (s *Storage) releaseRoomName(ctx context.Context, name string, cause error) error {
	if err := s.client.Del(ctx, s.keys.roomName(name)).Err(); err != nil {
		return errors.Join(cause, fmt.Errorf("release room name %q: %w", name, err))
	}
	return cause
}

func (s *Storage) RoomNameExists(ctx context.Context, name string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keys.roomName(name)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) ListRooms(ctx context.Context, q model.RoomQuery) ([]*model.Room, error) {
	index := s.keys.rooms()
	if q.TopicID != nil {
		index = s.keys.roomsByTopic(*q.TopicID)
	}

	lower := "-"
	if q.After != "" {
		lower = "(" + string(q.After)
	}

	ids, err := s.client.ZRangeByLex(ctx, index, &redis.ZRangeBy{
		Min:   lower,
		Max:   "+",
		Count: int64(q.Limit),
	}).Result()
	if err != nil {
		return nil, err
	}

	roomIDs := make([]model.RoomID, len(ids))
	for i, id := range ids {
		roomIDs[i] = model.RoomID(id)
	}
	return s.loadRooms(ctx, roomIDs)
}

func (s *Storage) GetRoomsByIDs(ctx context.Context, ids []model.RoomID) ([]*model.Room, error) {
	seen := make(map[model.RoomID]bool, len(ids))
	unique := make([]model.RoomID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	rooms, err := s.loadRooms(ctx, unique)
	if err != nil {
		return nil, err
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (s *Storage) CountActiveRoomsByTopic(ctx context.Context, at time.Time) (map[model.TopicID]int, error) {
	ids, err := s.client.ZRangeByLex(ctx, s.keys.rooms(), &redis.ZRangeBy{Min: "-", Max: "+"}).Result()
	if err != nil {
		return nil, err
	}

	roomIDs := make([]model.RoomID, len(ids))
	for i, id := range ids {
		roomIDs[i] = model.RoomID(id)
	}
	rooms, err := s.loadRooms(ctx, roomIDs)
	if err != nil {
		return nil, err
	}

	counts := make(map[model.TopicID]int)
	for _, room := range rooms {
		if room.IsActive(at) {
			counts[room.TopicID]++
		}
	}
	return counts, nil
}

// loadRooms fetches room records in the given order, skipping missing ones
func (s *Storage) loadRooms(ctx context.Context, ids []model.RoomID) ([]*model.Room, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	roomKeys := make([]string, len(ids))
	for i, id := range ids {
		roomKeys[i] = s.keys.room(id)
	}

	values, err := s.client.MGet(ctx, roomKeys...).Result()
	if err != nil {
		return nil, err
	}

	rooms := make([]*model.Room, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var room model.Room
		if err := json.Unmarshal([]byte(raw), &room); err != nil {
			return nil, fmt.Errorf("decode room %s: %w", ids[i], err)
		}
		rooms = append(rooms, &room)
	}
	return rooms, nil
}
