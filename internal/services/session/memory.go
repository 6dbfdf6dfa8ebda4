package session

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/topicrooms/internal/model"
)

// MemoryStore keeps sessions in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byPlayer map[model.PlayerID]map[string]struct{}
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		byPlayer: make(map[model.PlayerID]map[string]struct{}),
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.sessions[sess.Token]; ok {
		s.unindex(prev)
	}

	copied := *sess
	s.sessions[sess.Token] = &copied

	tokens, ok := s.byPlayer[sess.Player.ID]
	if !ok {
		tokens = make(map[string]struct{})
		s.byPlayer[sess.Player.ID] = tokens
	}
	tokens[sess.Token] = struct{}{}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrNoSession
	}
	copied := *sess
	return &copied, nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return ErrNoSession
	}
	s.remove(sess)
	return nil
}

func (s *MemoryStore) DeleteForPlayer(ctx context.Context, playerID model.PlayerID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tokens := s.byPlayer[playerID]
	for token := range tokens {
		delete(s.sessions, token)
	}
	delete(s.byPlayer, playerID)
	return len(tokens), nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, sess := range s.sessions {
		if sess.Expired(now) {
			s.remove(sess)
			removed++
		}
	}
	return removed, nil
}

// remove must be called with the write lock held
func (s *MemoryStore) remove(sess *Session) {
	delete(s.sessions, sess.Token)
	s.unindex(sess)
}

func (s *MemoryStore) unindex(sess *Session) {
	tokens := s.byPlayer[sess.Player.ID]
	delete(tokens, sess.Token)
	if len(tokens) == 0 {
		delete(s.byPlayer, sess.Player.ID)
	}
}
