package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/topicrooms/internal/api/apierr"
	"github.com/mcoot/topicrooms/internal/api/response"
	"github.com/mcoot/topicrooms/internal/errutil"
	"github.com/mcoot/topicrooms/internal/services/catalog"
)

// TopicHandler handles topic catalog endpoints
type TopicHandler struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

// NewTopicHandler creates a new topic handler
func NewTopicHandler(catalog *catalog.Service, logger *slog.Logger) *TopicHandler {
	return &TopicHandler{catalog: catalog, logger: logger}
}

// List handles GET /topic/list
func (h *TopicHandler) List(w http.ResponseWriter, r *http.Request) {
	topics, err := h.catalog.ListTopics(r.Context())
	if err != nil {
		errutil.LogError(h.logger, "list topics failed", err)
		apierr.WriteError(w, err)
		return
	}
	response.Success(w, response.TopicsFromModel(topics))
}

// RoomCount handles GET /topic/room-count
func (h *TopicHandler) RoomCount(w http.ResponseWriter, r *http.Request) {
	counts, err := h.catalog.RoomCountByTopic(r.Context())
	if err != nil {
		errutil.LogError(h.logger, "room count failed", err)
		apierr.WriteError(w, err)
		return
	}
	response.Success(w, response.TopicRoomCountsFromModel(counts))
}
