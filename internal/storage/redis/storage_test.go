package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/topicrooms/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	s.Require().NoError(s.storage.SaveTopics(s.ctx, []model.Topic{
		{ID: 1, Name: "Games"},
		{ID: 2, Name: "Music"},
	}))
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, &model.Player{ID: "host"}))
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) room(id, name string, topic model.TopicID) *model.Room {
	return &model.Room{
		ID:        model.RoomID(id),
		Name:      name,
		PlayerID:  "host",
		TopicID:   topic,
		StartTime: s.now,
		EndTime:   s.now.Add(time.Hour),
		CreatedAt: s.now,
	}
}

// Player tests

func (s *StorageSuite) TestCreateAndGetPlayer() {
	player := &model.Player{ID: "alice", PasswordHash: "hash", CreatedAt: s.now}

	s.Require().NoError(s.storage.CreatePlayer(s.ctx, player))

	retrieved, err := s.storage.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("hash", retrieved.PasswordHash)
	s.True(s.now.Equal(retrieved.CreatedAt))
	s.True(s.mini.Exists("topicrooms:player:alice"))
}

func (s *StorageSuite) TestCreatePlayerDuplicate() {
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, &model.Player{ID: "alice", PasswordHash: "first"}))

	err := s.storage.CreatePlayer(s.ctx, &model.Player{ID: "alice", PasswordHash: "second"})
	s.ErrorIs(err, model.ErrPlayerExists)

	p, _ := s.storage.GetPlayer(s.ctx, "alice")
	s.Equal("first", p.PasswordHash)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestUpdatePlayerPassword() {
	_ = s.storage.CreatePlayer(s.ctx, &model.Player{ID: "alice", PasswordHash: "old"})

	s.Require().NoError(s.storage.UpdatePlayerPassword(s.ctx, "alice", "new", s.now))

	p, err := s.storage.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("new", p.PasswordHash)
}

func (s *StorageSuite) TestUpdatePlayerPasswordNotFound() {
	err := s.storage.UpdatePlayerPassword(s.ctx, "ghost", "new", s.now)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestDeletePlayer() {
	_ = s.storage.CreatePlayer(s.ctx, &model.Player{ID: "alice"})

	s.Require().NoError(s.storage.DeletePlayer(s.ctx, "alice"))
	s.False(s.mini.Exists("topicrooms:player:alice"))
	s.ErrorIs(s.storage.DeletePlayer(s.ctx, "alice"), model.ErrPlayerNotFound)
}

// Topic tests

func (s *StorageSuite) TestListTopics() {
	topics, err := s.storage.ListTopics(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.Topic{{ID: 1, Name: "Games"}, {ID: 2, Name: "Music"}}, topics)
}

func (s *StorageSuite) TestSaveTopicsIsIdempotent() {
	s.Require().NoError(s.storage.SaveTopics(s.ctx, []model.Topic{{ID: 1, Name: "Games"}}))

	topics, err := s.storage.ListTopics(s.ctx)
	s.Require().NoError(err)
	s.Len(topics, 2)
}

func (s *StorageSuite) TestGetTopicNotFound() {
	_, err := s.storage.GetTopic(s.ctx, 99)
	s.ErrorIs(err, model.ErrTopicNotFound)
}

// Room tests

func (s *StorageSuite) TestCreateRoomWritesIndexes() {
	s.Require().NoError(s.storage.CreateRoom(s.ctx, s.room("01A", "lobby", 1)))

	s.True(s.mini.Exists("topicrooms:room:01A"))
	name, err := s.mini.Get("topicrooms:idx:room_name:lobby")
	s.Require().NoError(err)
	s.Equal("01A", name)

	members, err := s.mini.ZMembers("topicrooms:idx:rooms_by_topic:1")
	s.Require().NoError(err)
	s.Equal([]string{"01A"}, members)
}

func (s *StorageSuite) TestCreateRoomDuplicateName() {
	s.Require().NoError(s.storage.CreateRoom(s.ctx, s.room("01A", "lobby", 1)))

	err := s.storage.CreateRoom(s.ctx, s.room("01B", "lobby", 2))
	s.ErrorIs(err, model.ErrRoomNameTaken)
	s.False(s.mini.Exists("topicrooms:room:01B"))
}

func (s *StorageSuite) TestCreateRoomUnknownTopic() {
	err := s.storage.CreateRoom(s.ctx, s.room("01A", "lobby", 42))
	s.ErrorIs(err, model.ErrTopicNotFound)

	exists, err := s.storage.RoomNameExists(s.ctx, "lobby")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StorageSuite) TestCreateRoomDeletedOwner() {
	s.Require().NoError(s.storage.DeletePlayer(s.ctx, "host"))

	err := s.storage.CreateRoom(s.ctx, s.room("01A", "lobby", 1))
	s.ErrorIs(err, model.ErrPlayerNotFound)

	exists, err := s.storage.RoomNameExists(s.ctx, "lobby")
	s.Require().NoError(err)
	s.False(exists)
	s.False(s.mini.Exists("topicrooms:room:01A"))
}

func (s *StorageSuite) TestReleaseRoomNameJoinsFailure() {
	cause := errors.New("write failed")
	s.mini.SetError("ERR injected failure")

	err := s.storage.releaseRoomName(s.ctx, "lobby", cause)
	s.mini.SetError("")

	s.ErrorIs(err, cause)
	s.ErrorContains(err, `release room name "lobby"`)
}

func (s *StorageSuite) TestConcurrentCreateRoomSameName() {
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.storage.CreateRoom(s.ctx, s.room(fmt.Sprintf("01%02d", i), "same", 1))
		}(i)
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		s.ErrorIs(err, model.ErrRoomNameTaken)
	}
	s.Equal(1, successes)
}

func (s *StorageSuite) TestListRoomsCursorAndFilter() {
	_ = s.storage.CreateRoom(s.ctx, s.room("01A", "a", 1))
	_ = s.storage.CreateRoom(s.ctx, s.room("01B", "b", 2))
	_ = s.storage.CreateRoom(s.ctx, s.room("01C", "c", 1))
	_ = s.storage.CreateRoom(s.ctx, s.room("01D", "d", 1))

	first, err := s.storage.ListRooms(s.ctx, model.RoomQuery{Limit: 2})
	s.Require().NoError(err)
	s.Equal([]model.RoomID{"01A", "01B"}, ids(first))

	second, err := s.storage.ListRooms(s.ctx, model.RoomQuery{After: "01B", Limit: 2})
	s.Require().NoError(err)
	s.Equal([]model.RoomID{"01C", "01D"}, ids(second))

	topic := model.TopicID(1)
	filtered, err := s.storage.ListRooms(s.ctx, model.RoomQuery{TopicID: &topic, After: "01A", Limit: 10})
	s.Require().NoError(err)
	s.Equal([]model.RoomID{"01C", "01D"}, ids(filtered))
}

func (s *StorageSuite) TestGetRoomsByIDs() {
	_ = s.storage.CreateRoom(s.ctx, s.room("01A", "a", 1))
	_ = s.storage.CreateRoom(s.ctx, s.room("01B", "b", 1))

	rooms, err := s.storage.GetRoomsByIDs(s.ctx, []model.RoomID{"01B", "missing", "01A", "01A"})
	s.Require().NoError(err)
	s.Equal([]model.RoomID{"01A", "01B"}, ids(rooms))

	none, err := s.storage.GetRoomsByIDs(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *StorageSuite) TestCountActiveRoomsByTopic() {
	_ = s.storage.CreateRoom(s.ctx, s.room("01A", "a", 1))
	ended := s.room("01B", "b", 1)
	ended.StartTime = s.now.Add(-2 * time.Hour)
	ended.EndTime = s.now.Add(-time.Hour)
	_ = s.storage.CreateRoom(s.ctx, ended)
	_ = s.storage.CreateRoom(s.ctx, s.room("01C", "c", 2))

	counts, err := s.storage.CountActiveRoomsByTopic(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(map[model.TopicID]int{1: 1, 2: 1}, counts)
}

func ids(rooms []*model.Room) []model.RoomID {
	out := make([]model.RoomID, len(rooms))
	for i, r := range rooms {
		out[i] = r.ID
	}
	return out
}
