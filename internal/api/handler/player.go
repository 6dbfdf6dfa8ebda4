package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/topicrooms/internal/api/middleware"
	"github.com/mcoot/topicrooms/internal/api/request"
	"github.com/mcoot/topicrooms/internal/api/response"
	"github.com/mcoot/topicrooms/internal/metrics"
	"github.com/mcoot/topicrooms/internal/services/account"
	"github.com/mcoot/topicrooms/internal/services/session"
	"github.com/mcoot/topicrooms/internal/status"
)

// PlayerHandler handles player account endpoints
type PlayerHandler struct {
	accounts *account.Service
	sessions *session.Manager
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(accounts *account.Service, sessions *session.Manager, m *metrics.Metrics, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{
		accounts: accounts,
		sessions: sessions,
		metrics:  m,
		logger:   logger,
	}
}

// Register handles POST /player/register
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	code, err := h.accounts.Register(r.Context(), req.PlayerID, req.Password)
	outcome(w, h.logger, h.metrics, code, err, nil)
}

// Login handles POST /player/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	identity, code, err := h.accounts.Login(r.Context(), req.PlayerID, req.Password)
	if !code.OK() {
		outcome(w, h.logger, h.metrics, code, err, nil)
		return
	}

	sess, err := h.sessions.Rotate(r.Context(), middleware.GetToken(r.Context()), *identity)
	if err != nil {
		outcome(w, h.logger, h.metrics, status.LoginServerError, err, nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	outcome(w, h.logger, h.metrics, code, nil, response.LoginFromSession(code, sess))
}

// Logout handles POST /player/logout
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())
	if token == "" {
		outcome(w, h.logger, h.metrics, status.LogoutUnauthenticated, nil, nil)
		return
	}

	code, err := h.accounts.Logout(r.Context(), token)
	if code.OK() {
		http.SetCookie(w, &http.Cookie{
			Name:   middleware.SessionCookie,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}
	outcome(w, h.logger, h.metrics, code, err, nil)
}

// ChangePassword handles PATCH /player/change-password
func (h *PlayerHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req request.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}

	sess := middleware.GetSession(r.Context())
	code, err := h.accounts.ChangePassword(r.Context(), sess, req.PlayerID, req.OldPassword, req.NewPassword)
	outcome(w, h.logger, h.metrics, code, err, nil)
}

// DeletePlayer handles DELETE /player/delete
func (h *PlayerHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	var req request.DeletePlayerRequest
	if !decode(w, r, &req) {
		return
	}

	sess := middleware.GetSession(r.Context())
	code, err := h.accounts.DeletePlayer(r.Context(), sess, req.PlayerID, req.Password)
	outcome(w, h.logger, h.metrics, code, err, nil)
}

// Me handles GET /player/me
func (h *PlayerHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustGetSession(r.Context())
	response.Success(w, response.Me{
		Player:    response.PlayerFromIdentity(sess.Player),
		ExpiresAt: sess.ExpiresAt,
	})
}
