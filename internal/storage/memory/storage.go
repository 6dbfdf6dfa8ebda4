package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/topicrooms/internal/model"
	"github.com/mcoot/topicrooms/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players   map[model.PlayerID]*model.Player
	topics    map[model.TopicID]*model.Topic
	rooms     map[model.RoomID]*model.Room
	roomNames map[string]model.RoomID
	roomOrder []model.RoomID // ascending; ULIDs are appended in order
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:   make(map[model.PlayerID]*model.Player),
		topics:    make(map[model.TopicID]*model.Topic),
		rooms:     make(map[model.RoomID]*model.Room),
		roomNames: make(map[string]model.RoomID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.ID]; ok {
		return model.ErrPlayerExists
	}
	p := *player
	s.players[player.ID] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) UpdatePlayerPassword(ctx context.Context, id model.PlayerID, passwordHash string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	player.PasswordHash = passwordHash
	player.UpdatedAt = updatedAt
	return nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[id]; !ok {
		return model.ErrPlayerNotFound
	}
	delete(s.players, id)
	return nil
}

// Topic operations

func (s *Storage) SaveTopics(ctx context.Context, topics []model.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range topics {
		topic := t
		s.topics[t.ID] = &topic
	}
	return nil
}

func (s *Storage) ListTopics(ctx context.Context) ([]model.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	topics := make([]model.Topic, 0, len(s.topics))
	for _, t := range s.topics {
		topics = append(topics, *t)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].ID < topics[j].ID })
	return topics, nil
}

func (s *Storage) GetTopic(ctx context.Context, id model.TopicID) (*model.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	topic, ok := s.topics[id]
	if !ok {
		return nil, model.ErrTopicNotFound
	}
	t := *topic
	return &t, nil
}

// Room operations

func (s *Storage) CreateRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roomNames[room.Name]; ok {
		return model.ErrRoomNameTaken
	}
	if _, ok := s.topics[room.TopicID]; !ok {
		return model.ErrTopicNotFound
	}
	if _, ok := s.players[room.PlayerID]; !ok {
		return model.ErrPlayerNotFound
	}
	r := *room
	s.rooms[room.ID] = &r
	s.roomNames[room.Name] = room.ID
	s.insertOrdered(room.ID)
	return nil
}

// insertOrdered keeps roomOrder sorted even if an id arrives out of order
func (s *Storage) insertOrdered(id model.RoomID) {
	i := sort.Search(len(s.roomOrder), func(i int) bool { return s.roomOrder[i] >= id })
	s.roomOrder = append(s.roomOrder, "")
	copy(s.roomOrder[i+1:], s.roomOrder[i:])
	s.roomOrder[i] = id
}

func (s *Storage) RoomNameExists(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.roomNames[name]
	return ok, nil
}

func (s *Storage) ListRooms(ctx context.Context, q model.RoomQuery) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if q.After != "" {
		start = sort.Search(len(s.roomOrder), func(i int) bool { return s.roomOrder[i] > q.After })
	}

	var rooms []*model.Room
	for _, id := range s.roomOrder[start:] {
		if q.Limit > 0 && len(rooms) >= q.Limit {
			break
		}
		room := s.rooms[id]
		if !q.Matches(room) {
			continue
		}
		r := *room
		rooms = append(rooms, &r)
	}
	return rooms, nil
}

func (s *Storage) GetRoomsByIDs(ctx context.Context, ids []model.RoomID) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[model.RoomID]bool, len(ids))
	var rooms []*model.Room
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if room, ok := s.rooms[id]; ok {
			r := *room
			rooms = append(rooms, &r)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (s *Storage) CountActiveRoomsByTopic(ctx context.Context, at time.Time) (map[model.TopicID]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[model.TopicID]int)
	for _, room := range s.rooms {
		if room.IsActive(at) {
			counts[room.TopicID]++
		}
	}
	return counts, nil
}
