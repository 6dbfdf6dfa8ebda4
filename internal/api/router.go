package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/topicrooms/internal/api/apierr"
	"github.com/mcoot/topicrooms/internal/api/handler"
	"github.com/mcoot/topicrooms/internal/api/middleware"
	"github.com/mcoot/topicrooms/internal/api/response"
	"github.com/mcoot/topicrooms/internal/metrics"
	basemw "github.com/mcoot/topicrooms/internal/middleware"
	"github.com/mcoot/topicrooms/internal/services/account"
	"github.com/mcoot/topicrooms/internal/services/catalog"
	"github.com/mcoot/topicrooms/internal/services/room"
	"github.com/mcoot/topicrooms/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Sessions *session.Manager
	Accounts *account.Service
	Catalog  *catalog.Service
	Rooms    *room.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	playerHandler := handler.NewPlayerHandler(cfg.Accounts, cfg.Sessions, cfg.Metrics, cfg.Logger)
	topicHandler := handler.NewTopicHandler(cfg.Catalog, cfg.Logger)
	roomHandler := handler.NewRoomHandler(cfg.Rooms, cfg.Metrics, cfg.Logger)

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(basemw.Logging(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.Session(cfg.Sessions, cfg.Logger))

	// Metrics exposition (not enveloped)
	r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)

	// Player routes. Privileged operations check the session themselves so
	// that they can report their own Unauthenticated code.
	players := r.PathPrefix("/player").Subrouter()
	players.HandleFunc("/register", playerHandler.Register).Methods(http.MethodPost)
	players.HandleFunc("/login", playerHandler.Login).Methods(http.MethodPost)
	players.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)
	players.HandleFunc("/change-password", playerHandler.ChangePassword).Methods(http.MethodPatch)
	players.HandleFunc("/delete", playerHandler.DeletePlayer).Methods(http.MethodDelete)
	players.Handle("/me", middleware.RequireSession(cfg.Sessions, cfg.Logger)(http.HandlerFunc(playerHandler.Me))).Methods(http.MethodGet)

	// Topic routes
	topics := r.PathPrefix("/topic").Subrouter()
	topics.HandleFunc("/list", topicHandler.List).Methods(http.MethodGet)
	topics.HandleFunc("/room-count", topicHandler.RoomCount).Methods(http.MethodGet)

	// Room routes
	rooms := r.PathPrefix("/room").Subrouter()
	rooms.HandleFunc("/create", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/list", roomHandler.List).Methods(http.MethodPost)
	rooms.HandleFunc("/ids", roomHandler.ByIDs).Methods(http.MethodPost)
	rooms.HandleFunc("/ids", roomHandler.ByIDsQuery).Methods(http.MethodGet)

	r.HandleFunc("/status-codes", handler.StatusCodes).Methods(http.MethodGet)
	r.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	response.Fail(w, http.StatusNotFound, apierr.MsgNotFound)
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	response.Fail(w, http.StatusMethodNotAllowed, "method not allowed")
}
