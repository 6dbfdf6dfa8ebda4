package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/topicrooms/internal/api/response"
)

func envelopeServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientDecodesSuccessData(t *testing.T) {
	srv := envelopeServer(t, http.StatusOK, `{"status":"success","data":{"message":"ok"},"error":null}`)

	var msg response.Message
	require.NoError(t, NewClient(srv.URL+"/", "").Get("/health", &msg))
	assert.Equal(t, "ok", msg.Message)
}

func TestClientReturnsAPIError(t *testing.T) {
	srv := envelopeServer(t, http.StatusConflict, `{"status":"fail","data":null,"error":"player id is already taken"}`)

	err := NewClient(srv.URL, "").Post("/player/register", map[string]string{}, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "player id is already taken", apiErr.Message)
}

func TestClientSendsBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"status":"success","data":null,"error":null}`))
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL, "sess_abc").Get("/player/me", nil))
	assert.Equal(t, "Bearer sess_abc", got)
}

func TestClientRejectsNonEnvelope(t *testing.T) {
	srv := envelopeServer(t, http.StatusBadGateway, `upstream down`)

	err := NewClient(srv.URL, "").Get("/health", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestConfigTokenRoundTrip(t *testing.T) {
	c := &Config{TokenFile: filepath.Join(t.TempDir(), "nested", "token")}

	require.NoError(t, c.LoadToken())
	assert.Empty(t, c.Token)

	require.NoError(t, c.SaveToken("sess_saved"))
	c.Token = ""
	require.NoError(t, c.LoadToken())
	assert.Equal(t, "sess_saved", c.Token)

	require.NoError(t, c.ClearToken())
	assert.Empty(t, c.Token)
	_, err := os.Stat(c.TokenFile)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, c.ClearToken())
}

func TestOutputText(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput("text", &buf)

	out.Print(response.RoomPage{
		Rooms:      []response.Room{{RoomID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", RoomName: "lobby", TopicID: 2, PlayerID: "alice"}},
		NextCursor: "01ARZ3NDEKTSV4RRFFQ69G5FAV",
	})

	text := buf.String()
	assert.Contains(t, text, "Rooms (1):")
	assert.Contains(t, text, "lobby [topic 2, owner alice")
	assert.True(t, strings.HasSuffix(text, "Next cursor: 01ARZ3NDEKTSV4RRFFQ69G5FAV\n"))
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	NewOutput("json", &buf).Print(response.Message{Message: "ok"})
	assert.JSONEq(t, `{"message":"ok"}`, buf.String())
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()
	for _, path := range [][]string{
		{"player", "register"},
		{"player", "login"},
		{"player", "logout"},
		{"player", "change-password"},
		{"player", "delete"},
		{"player", "me"},
		{"topic", "list"},
		{"topic", "room-count"},
		{"room", "create"},
		{"room", "list"},
		{"room", "get"},
		{"status-codes"},
		{"health"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
