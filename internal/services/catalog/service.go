// Package catalog serves the static topic list and per-topic room counts.
package catalog

import (
	"context"
	"log/slog"

	"github.com/mcoot/topicrooms/internal/dependencies/clock"
	"github.com/mcoot/topicrooms/internal/model"
	"github.com/mcoot/topicrooms/internal/storage"
)

// Service reads the topic catalog
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new catalog service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// SeedTopics upserts the configured topics. Safe to call on every startup.
func (s *Service) SeedTopics(ctx context.Context, topics []model.Topic) error {
	if len(topics) == 0 {
		return nil
	}
	if err := s.storage.SaveTopics(ctx, topics); err != nil {
		return err
	}
	s.logger.Info("topics seeded", "count", len(topics))
	return nil
}

// ListTopics returns every topic ordered by id
func (s *Service) ListTopics(ctx context.Context) ([]model.Topic, error) {
	return s.storage.ListTopics(ctx)
}

// RoomCountByTopic returns every topic with its number of active rooms,
// ordered by topic id. Topics without rooms report zero.
func (s *Service) RoomCountByTopic(ctx context.Context) ([]model.TopicRoomCount, error) {
	topics, err := s.storage.ListTopics(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.storage.CountActiveRoomsByTopic(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}

	result := make([]model.TopicRoomCount, len(topics))
	for i, t := range topics {
		result[i] = model.TopicRoomCount{Topic: t, Count: counts[t.ID]}
	}
	return result, nil
}
