// Package room creates rooms and serves cursor-paginated room listings.
package room

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/mcoot/topicrooms/internal/dependencies/clock"
	"github.com/mcoot/topicrooms/internal/dependencies/random"
	"github.com/mcoot/topicrooms/internal/model"
	"github.com/mcoot/topicrooms/internal/status"
	"github.com/mcoot/topicrooms/internal/storage"
)

// Config holds room limits
type Config struct {
	MaxNameLength   int `mapstructure:"max_name_length"`
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

// DefaultConfig returns the default room limits
func DefaultConfig() Config {
	return Config{
		MaxNameLength:   50,
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}
}

// CreateRoomInput is the request to open a room
type CreateRoomInput struct {
	Name      string
	TopicID   model.TopicID
	PlayerID  model.PlayerID
	StartTime time.Time
	EndTime   time.Time
}

// ListRoomsInput selects a page of rooms
type ListRoomsInput struct {
	TopicID *model.TopicID
	Cursor  string // id of the last room on the previous page
	Limit   int
}

// RoomPage is one page of a room listing
type RoomPage struct {
	Rooms []*model.Room
	// NextCursor is the last room id when the page is full, empty otherwise
	NextCursor string
}

// Service handles room creation and listing
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// New creates a new room service
func New(storage storage.Storage, clock clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.MaxNameLength <= 0 {
		cfg.MaxNameLength = defaults.MaxNameLength
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = defaults.MaxPageSize
	}
	if cfg.DefaultPageSize <= 0 || cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = min(defaults.DefaultPageSize, cfg.MaxPageSize)
	}
	return &Service{
		storage: storage,
		clock:   clock,
		cfg:     cfg,
		logger:  logger,
		entropy: ulid.Monotonic(rnd, 0),
	}
}

// newID returns a ULID that sorts after every id previously issued by this service
func (s *Service) newID(now time.Time) (model.RoomID, error) {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	if err != nil {
		return "", err
	}
	return model.RoomID(id.String()), nil
}

// CreateRoom validates the input and stores a new room
func (s *Service) CreateRoom(ctx context.Context, in CreateRoomInput) (*model.Room, status.CreateRoom, error) {
	if strings.TrimSpace(in.Name) == "" || in.TopicID == 0 || in.PlayerID == "" ||
		in.StartTime.IsZero() || in.EndTime.IsZero() {
		return nil, status.CreateRoomMissingInput, nil
	}
	if utf8.RuneCountInString(in.Name) > s.cfg.MaxNameLength {
		return nil, status.CreateRoomNameTooLong, nil
	}
	if !in.StartTime.Before(in.EndTime) {
		return nil, status.CreateRoomInvalidTimeWindow, nil
	}

	taken, err := s.storage.RoomNameExists(ctx, in.Name)
	if err != nil {
		return nil, status.CreateRoomDBError, err
	}
	if taken {
		return nil, status.CreateRoomDuplicateName, nil
	}

	if _, err := s.storage.GetPlayer(ctx, in.PlayerID); err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, status.CreateRoomPlayerNotFound, nil
		}
		return nil, status.CreateRoomDBError, err
	}

	if _, err := s.storage.GetTopic(ctx, in.TopicID); err != nil {
		if errors.Is(err, model.ErrTopicNotFound) {
			return nil, status.CreateRoomTopicNotFound, nil
		}
		return nil, status.CreateRoomDBError, err
	}

	now := s.clock.Now()
	id, err := s.newID(now)
	if err != nil {
		return nil, status.CreateRoomServerError, err
	}

	room := &model.Room{
		ID:        id,
		Name:      in.Name,
		PlayerID:  in.PlayerID,
		TopicID:   in.TopicID,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		CreatedAt: now,
	}

	// The store is authoritative on name uniqueness and owner existence under concurrency
	if err := s.storage.CreateRoom(ctx, room); err != nil {
		switch {
		case errors.Is(err, model.ErrRoomNameTaken):
			return nil, status.CreateRoomDuplicateName, nil
		case errors.Is(err, model.ErrTopicNotFound):
			return nil, status.CreateRoomTopicNotFound, nil
		case errors.Is(err, model.ErrPlayerNotFound):
			return nil, status.CreateRoomPlayerNotFound, nil
		}
		return nil, status.CreateRoomDBError, err
	}

	s.logger.Info("room created", "room_id", room.ID, "topic_id", room.TopicID, "player_id", room.PlayerID)
	return room, status.CreateRoomSuccess, nil
}

// PageSize clamps a requested limit to [1, MaxPageSize]; non-positive means the default
func (s *Service) PageSize(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultPageSize
	}
	return min(limit, s.cfg.MaxPageSize)
}

// ListRooms returns rooms ordered by id, strictly after the cursor
func (s *Service) ListRooms(ctx context.Context, in ListRoomsInput) (*RoomPage, error) {
	var after model.RoomID
	if in.Cursor != "" {
		cursor, err := ulid.ParseStrict(in.Cursor)
		if err != nil {
			return nil, model.ErrInvalidCursor
		}
		after = model.RoomID(cursor.String())
	}

	limit := s.PageSize(in.Limit)
	rooms, err := s.storage.ListRooms(ctx, model.RoomQuery{
		TopicID: in.TopicID,
		After:   after,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	page := &RoomPage{Rooms: rooms}
	if page.Rooms == nil {
		page.Rooms = []*model.Room{}
	}
	if len(rooms) == limit {
		page.NextCursor = string(rooms[len(rooms)-1].ID)
	}
	return page, nil
}

// GetRoomsByIDs returns the known rooms among ids, ordered by id.
// Unknown and malformed ids are omitted.
func (s *Service) GetRoomsByIDs(ctx context.Context, ids []string) ([]*model.Room, error) {
	valid := make([]model.RoomID, 0, len(ids))
	for _, id := range ids {
		parsed, err := ulid.ParseStrict(id)
		if err != nil {
			continue
		}
		valid = append(valid, model.RoomID(parsed.String()))
	}
	if len(valid) == 0 {
		return []*model.Room{}, nil
	}

	rooms, err := s.storage.GetRoomsByIDs(ctx, valid)
	if err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []*model.Room{}
	}
	return rooms, nil
}
