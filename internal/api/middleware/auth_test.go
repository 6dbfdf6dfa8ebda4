package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/topicrooms/internal/dependencies/mocks"
	"github.com/mcoot/topicrooms/internal/model"
	"github.com/mcoot/topicrooms/internal/services/session"
	"github.com/mcoot/topicrooms/internal/testutil"
)

func newManager(clk *mocks.MockClock) *session.Manager {
	return session.NewManager(session.NewMemoryStore(), clk, mocks.NewMockRandom(),
		session.Config{TTL: time.Hour}, testutil.NopLogger())
}

func requireSessionHandler(m *session.Manager) http.Handler {
	return RequireSession(m, testutil.NopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(string(MustGetSession(r.Context()).Player.ID)))
	}))
}

func TestRequireSessionResolvesBearerToken(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	m := newManager(clk)
	sess, err := m.Login(context.Background(), model.PlayerIdentity{ID: "alice"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/player/me", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	rr := httptest.NewRecorder()
	requireSessionHandler(m).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alice", rr.Body.String())
}

func TestRequireSessionRejects(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	m := newManager(clk)
	sess, err := m.Login(context.Background(), model.PlayerIdentity{ID: "alice"})
	require.NoError(t, err)
	clk.Advance(2 * time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{name: "no token"},
		{name: "unknown token", token: "sess_nobody"},
		{name: "expired token", token: sess.Token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/player/me", nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.token})
			}
			rr := httptest.NewRecorder()
			requireSessionHandler(m).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Contains(t, rr.Body.String(), "authentication required")
		})
	}
}
