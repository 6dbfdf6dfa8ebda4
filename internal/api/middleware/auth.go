package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/topicrooms/internal/api/apierr"
	"github.com/mcoot/topicrooms/internal/errutil"
	"github.com/mcoot/topicrooms/internal/services/session"
)

// SessionCookie is the cookie that carries the session token
const SessionCookie = "session"

type contextKey string

const (
	sessionContextKey contextKey = "session"
	tokenContextKey   contextKey = "session_token"
)

// Session resolves the caller's session if one is presented. Requests
// without a live session pass through with no session in context.
func Session(manager *session.Manager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			ctx := context.WithValue(r.Context(), tokenContextKey, token)

			if token != "" {
				sess, err := manager.Current(ctx, token)
				switch {
				case err == nil:
					ctx = context.WithValue(ctx, sessionContextKey, sess)
				case !errors.Is(err, session.ErrNoSession):
					errutil.LogError(logger, "session lookup failed", err)
					apierr.WriteError(w, apierr.NewInternalError())
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests without a live session and stores the
// resolved session in context for MustGetSession
func RequireSession(manager *session.Manager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := GetToken(r.Context())
			if token == "" {
				token = ExtractToken(r)
			}

			sess, err := manager.Require(r.Context(), token)
			if err != nil {
				if !errors.Is(err, session.ErrUnauthenticated) {
					errutil.LogError(logger, "session lookup failed", err)
				}
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractToken reads the bearer token, falling back to the session cookie
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	cookie, err := r.Cookie(SessionCookie)
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetSession returns the resolved session, or nil
func GetSession(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

// GetToken returns the presented token even when no session is bound to it
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// MustGetSession returns the resolved session or panics
func MustGetSession(ctx context.Context) *session.Session {
	sess := GetSession(ctx)
	if sess == nil {
		panic("no session in context - RequireSession not applied?")
	}
	return sess
}
