package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/topicrooms/internal/api"
	"github.com/mcoot/topicrooms/internal/api/response"
	"github.com/mcoot/topicrooms/internal/factory"
	"github.com/mcoot/topicrooms/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "roomctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/roomctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "ROOMCTL_TOKEN=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// startTestServer runs the real server over in-memory storage
func startTestServer(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := testutil.NopLogger()
	app, err := factory.New(context.Background(), factory.Config{
		Logger: logger,
		Topics: factory.TestTopics,
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:   logger,
		Metrics:  app.Metrics,
		Sessions: app.Sessions,
		Accounts: app.Accounts,
		Catalog:  app.Catalog,
		Rooms:    app.Rooms,
	})
	server := api.NewServer(router, api.DefaultServerConfig(), logger)

	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
		_ = app.Close()
	})

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/health")
	return serverURL
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

func decode[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "ok", decode[response.Message](t, output).Message)
}

func TestCLI_PlayerCommands(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	output, err := cli.run("player", "register", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "registration complete", decode[response.Message](t, output).Message)

	// Duplicate registration fails with the server's message
	output, err = cli.run("player", "register", "--user", "alice", "--pass", "secret123")
	require.Error(t, err)
	assert.Contains(t, output, "player id is already taken")

	output, err = cli.run("player", "login", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)
	login := decode[response.Login](t, output)
	assert.True(t, strings.HasPrefix(login.SessionToken, "sess_"))

	// Token is read back from the token file
	output, err = cli.run("player", "me")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "alice", decode[response.Me](t, output).Player.PlayerID)

	output, err = cli.run("player", "change-password", "--user", "alice", "--old", "secret123", "--new", "secret456")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("player", "logout")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("player", "me")
	require.Error(t, err)
	assert.Contains(t, output, "authentication required")

	output, err = cli.run("player", "login", "--user", "alice", "--pass", "secret456")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("player", "delete", "--user", "alice", "--pass", "secret456")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "player deleted", decode[response.Message](t, output).Message)
}

func TestCLI_TopicAndRoomCommands(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	_, err := cli.run("player", "register", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err)

	output, err := cli.run("topic", "list")
	require.NoError(t, err, "output: %s", output)
	assert.Len(t, decode[[]response.Topic](t, output), len(factory.TestTopics))

	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		output, err = cli.run("room", "create", "--name", name, "--topic", "1", "--user", "alice", "--duration", "2h")
		require.NoError(t, err, "output: %s", output)
		ids = append(ids, decode[response.CreateRoom](t, output).Room.RoomID)
	}

	output, err = cli.run("room", "create", "--name", "first", "--topic", "1", "--user", "alice")
	require.Error(t, err)
	assert.Contains(t, output, "room name is already in use")

	output, err = cli.run("room", "list", "--limit", "2")
	require.NoError(t, err, "output: %s", output)
	page := decode[response.RoomPage](t, output)
	require.Len(t, page.Rooms, 2)
	assert.Equal(t, ids[1], page.NextCursor)

	output, err = cli.run("room", "list", "--limit", "2", "--cursor", page.NextCursor)
	require.NoError(t, err, "output: %s", output)
	page = decode[response.RoomPage](t, output)
	require.Len(t, page.Rooms, 1)
	assert.Equal(t, ids[2], page.Rooms[0].RoomID)

	output, err = cli.run("room", "get", ids[2], ids[0])
	require.NoError(t, err, "output: %s", output)
	rooms := decode[[]response.Room](t, output)
	require.Len(t, rooms, 2)
	assert.Equal(t, ids[0], rooms[0].RoomID)

	output, err = cli.run("topic", "room-count")
	require.NoError(t, err, "output: %s", output)
	counts := decode[[]response.TopicRoomCount](t, output)
	require.NotEmpty(t, counts)
	assert.Equal(t, 3, counts[0].RoomCount)
}

func TestCLI_StatusCodes(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	output, err := cli.run("status-codes")
	require.NoError(t, err, "output: %s", output)
	families := decode[[]response.StatusFamily](t, output)
	assert.Len(t, families, 6)
}
