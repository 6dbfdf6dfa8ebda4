package factory

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/topicrooms/internal/dependencies/mocks"
	"github.com/mcoot/topicrooms/internal/model"
	"github.com/mcoot/topicrooms/internal/services/account"
	"github.com/mcoot/topicrooms/internal/services/room"
	"github.com/mcoot/topicrooms/internal/services/session"
	"github.com/mcoot/topicrooms/internal/storage/memory"
	"github.com/mcoot/topicrooms/internal/validation"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom

	Store        *memory.Storage
	SessionStore *session.MemoryStore
}

// TestTopics is the catalog seeded by SeedTestTopics
var TestTopics = []model.Topic{
	{ID: 1, Name: "General"},
	{ID: 2, Name: "Technology"},
	{ID: 3, Name: "Games"},
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Passwords are hashed at the minimum bcrypt cost to keep tests fast.
func NewTestApp(logger *slog.Logger) *TestApp {
	store := memory.New()
	sessions := session.NewMemoryStore()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(dependencies{
		store:     store,
		sessions:  sessions,
		clock:     mockClock,
		random:    mockRandom,
		hasher:    account.NewBcryptHasher(4),
		validator: validation.MustNewValidator(validation.DefaultRules()),
		session:   session.DefaultConfig(),
		room:      room.DefaultConfig(),
		logger:    logger,
	})

	return &TestApp{
		App:          app,
		MockClock:    mockClock,
		MockRandom:   mockRandom,
		Store:        store,
		SessionStore: sessions,
	}
}

// SeedTestTopics loads TestTopics into the catalog
func (t *TestApp) SeedTestTopics(ctx context.Context) error {
	return t.Catalog.SeedTopics(ctx, TestTopics)
}
