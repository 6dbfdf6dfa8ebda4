package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"

	"github.com/mcoot/topicrooms/internal/dependencies/mocks"
	"github.com/mcoot/topicrooms/internal/model"
	"github.com/mcoot/topicrooms/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type ManagerSuite struct {
	suite.Suite
	store   *MemoryStore
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	manager *Manager
	ctx     context.Context
	alice   model.PlayerIdentity
	bob     model.PlayerIdentity
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.manager = NewManager(s.store, s.clock, s.random, Config{TTL: time.Hour}, testutil.NopLogger())
	s.ctx = context.Background()
	s.alice = model.PlayerIdentity{ID: "alice"}
	s.bob = model.PlayerIdentity{ID: "bob"}
}

func (s *ManagerSuite) TestLoginMintsPrefixedToken() {
	s.random.QueueString("abc")

	sess, err := s.manager.Login(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Equal("sess_abc", sess.Token)
	s.Equal(s.clock.Now().Add(time.Hour), sess.ExpiresAt)
}

func (s *ManagerSuite) TestLoginTokensAreDistinct() {
	first, err := s.manager.Login(s.ctx, s.alice)
	s.Require().NoError(err)
	second, err := s.manager.Login(s.ctx, s.alice)
	s.Require().NoError(err)

	s.NotEqual(first.Token, second.Token)
}

func (s *ManagerSuite) TestRotateRetiresPreviousToken() {
	first, err := s.manager.Login(s.ctx, s.alice)
	s.Require().NoError(err)

	second, err := s.manager.Rotate(s.ctx, first.Token, s.bob)
	s.Require().NoError(err)
	s.NotEqual(first.Token, second.Token)

	_, err = s.manager.Current(s.ctx, first.Token)
	s.ErrorIs(err, ErrNoSession)
	got, err := s.manager.Current(s.ctx, second.Token)
	s.Require().NoError(err)
	s.Equal(s.bob, got.Player)
}

func (s *ManagerSuite) TestRotateWithUnknownOrEmptyPrevious() {
	sess, err := s.manager.Rotate(s.ctx, "sess_gone", s.alice)
	s.Require().NoError(err)
	s.Equal(s.alice, sess.Player)

	_, err = s.manager.Rotate(s.ctx, "", s.alice)
	s.Require().NoError(err)
}

func (s *ManagerSuite) TestCurrentReturnsBoundIdentity() {
	sess, _ := s.manager.Login(s.ctx, s.alice)

	got, err := s.manager.Current(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Equal(s.alice, got.Player)
}

func (s *ManagerSuite) TestCurrentWithoutToken() {
	_, err := s.manager.Current(s.ctx, "")
	s.ErrorIs(err, ErrNoSession)

	_, err = s.manager.Current(s.ctx, "sess_unknown")
	s.ErrorIs(err, ErrNoSession)
}

func (s *ManagerSuite) TestBindReplacesIdentityWholesale() {
	_, _ = s.manager.Bind(s.ctx, "tok", s.alice)
	_, err := s.manager.Bind(s.ctx, "tok", s.bob)
	s.Require().NoError(err)

	got, err := s.manager.Current(s.ctx, "tok")
	s.Require().NoError(err)
	s.Equal(s.bob, got.Player)
}

func (s *ManagerSuite) TestExpiredSessionIsGone() {
	sess, _ := s.manager.Login(s.ctx, s.alice)

	s.clock.Advance(time.Hour)

	_, err := s.manager.Current(s.ctx, sess.Token)
	s.ErrorIs(err, ErrNoSession)
	_, err = s.store.Get(s.ctx, sess.Token)
	s.ErrorIs(err, ErrNoSession)
}

func (s *ManagerSuite) TestRequire() {
	_, err := s.manager.Require(s.ctx, "nope")
	s.ErrorIs(err, ErrUnauthenticated)

	sess, _ := s.manager.Login(s.ctx, s.alice)
	got, err := s.manager.Require(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.True(got.BelongsTo("alice"))
	s.False(got.BelongsTo("bob"))
}

func (s *ManagerSuite) TestDestroy() {
	sess, _ := s.manager.Login(s.ctx, s.alice)

	s.Require().NoError(s.manager.Destroy(s.ctx, sess.Token))
	_, err := s.manager.Current(s.ctx, sess.Token)
	s.ErrorIs(err, ErrNoSession)

	s.ErrorIs(s.manager.Destroy(s.ctx, sess.Token), ErrNoSession)
	s.ErrorIs(s.manager.Destroy(s.ctx, ""), ErrNoSession)
}

func (s *ManagerSuite) TestDestroyPlayer() {
	a1, _ := s.manager.Login(s.ctx, s.alice)
	a2, _ := s.manager.Login(s.ctx, s.alice)
	b1, _ := s.manager.Login(s.ctx, s.bob)

	s.Require().NoError(s.manager.DestroyPlayer(s.ctx, "alice"))

	for _, token := range []string{a1.Token, a2.Token} {
		_, err := s.manager.Current(s.ctx, token)
		s.ErrorIs(err, ErrNoSession)
	}
	_, err := s.manager.Current(s.ctx, b1.Token)
	s.NoError(err)
}

func (s *ManagerSuite) TestCleanExpired() {
	_, _ = s.manager.Login(s.ctx, s.alice)
	s.clock.Advance(30 * time.Minute)
	live, _ := s.manager.Login(s.ctx, s.bob)
	s.clock.Advance(45 * time.Minute)

	n, err := s.manager.CleanExpired(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	_, err = s.manager.Current(s.ctx, live.Token)
	s.NoError(err)
}

func (s *ManagerSuite) TestJanitorStopsCleanly() {
	m := NewManager(s.store, s.clock, s.random, Config{TTL: time.Hour, CleanupInterval: time.Millisecond}, testutil.NopLogger())
	_, _ = m.Login(s.ctx, s.alice)
	s.clock.Advance(2 * time.Hour)

	stop := m.StartJanitor()
	s.Eventually(func() bool {
		return s.store.count() == 0
	}, time.Second, 5*time.Millisecond)
	stop()
	stop()
}

func (s *ManagerSuite) TestJanitorDisabled() {
	stop := s.manager.StartJanitor()
	stop()
}
