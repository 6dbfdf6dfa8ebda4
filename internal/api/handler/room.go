package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/topicrooms/internal/api/apierr"
	"github.com/mcoot/topicrooms/internal/api/request"
	"github.com/mcoot/topicrooms/internal/api/response"
	"github.com/mcoot/topicrooms/internal/errutil"
	"github.com/mcoot/topicrooms/internal/metrics"
	"github.com/mcoot/topicrooms/internal/model"
	"github.com/mcoot/topicrooms/internal/services/room"
)

// RoomHandler handles room endpoints
type RoomHandler struct {
	rooms   *room.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms *room.Service, m *metrics.Metrics, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, metrics: m, logger: logger}
}

// Create handles POST /room/create
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if !decode(w, r, &req) {
		return
	}

	start, okStart := parseTime(req.StartTime)
	end, okEnd := parseTime(req.EndTime)
	if !okStart || !okEnd {
		apierr.WriteError(w, apierr.NewInvalidRequestError())
		return
	}

	created, code, err := h.rooms.CreateRoom(r.Context(), room.CreateRoomInput{
		Name:      req.RoomName,
		TopicID:   model.TopicID(req.TopicID),
		PlayerID:  model.PlayerID(req.PlayerID),
		StartTime: start,
		EndTime:   end,
	})

	var data any
	if code.OK() {
		data = response.CreateRoom{Message: code.Message(), Room: response.RoomFromModel(created)}
	}
	outcome(w, h.logger, h.metrics, code, err, data)
}

// parseTime accepts RFC 3339. An empty value is the zero time.
func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// List handles POST /room/list
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	var req request.ListRoomsRequest
	if !decode(w, r, &req) {
		return
	}

	in := room.ListRoomsInput{Cursor: req.CursorID, Limit: req.Limit}
	if req.TopicID != nil {
		topic := model.TopicID(*req.TopicID)
		in.TopicID = &topic
	}

	page, err := h.rooms.ListRooms(r.Context(), in)
	if err != nil {
		if !errors.Is(err, model.ErrInvalidCursor) {
			errutil.LogError(h.logger, "list rooms failed", err)
		}
		apierr.WriteError(w, err)
		return
	}
	response.Success(w, response.RoomPageFromService(page))
}

// ByIDs handles POST /room/ids with a JSON body
func (h *RoomHandler) ByIDs(w http.ResponseWriter, r *http.Request) {
	var req request.RoomIDsRequest
	if !decode(w, r, &req) {
		return
	}
	h.writeRooms(w, r, req.RoomIDs)
}

// ByIDsQuery handles GET /room/ids?roomIds=a,b. Repeated parameters are also accepted.
func (h *RoomHandler) ByIDsQuery(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, v := range r.URL.Query()["roomIds"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	h.writeRooms(w, r, ids)
}

func (h *RoomHandler) writeRooms(w http.ResponseWriter, r *http.Request, ids []string) {
	rooms, err := h.rooms.GetRoomsByIDs(r.Context(), ids)
	if err != nil {
		errutil.LogError(h.logger, "get rooms failed", err)
		apierr.WriteError(w, err)
		return
	}
	response.Success(w, response.RoomsFromModel(rooms))
}
