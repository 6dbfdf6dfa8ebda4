package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/topicrooms/internal/model"
)

func TestMemoryStore_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()

	_ = store.Save(ctx, &Session{Token: "old", Player: model.PlayerIdentity{ID: "alice"}, ExpiresAt: now.Add(-time.Second)}, 0)
	_ = store.Save(ctx, &Session{Token: "edge", Player: model.PlayerIdentity{ID: "alice"}, ExpiresAt: now}, 0)
	_ = store.Save(ctx, &Session{Token: "live", Player: model.PlayerIdentity{ID: "bob"}, ExpiresAt: now.Add(time.Hour)}, 0)

	n, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = store.Get(ctx, "live")
	assert.NoError(t, err)
	assert.Empty(t, store.byPlayer["alice"])
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token := fmt.Sprintf("t%d", i)
			player := model.PlayerID(fmt.Sprintf("p%d", i%5))
			_ = store.Save(ctx, &Session{Token: token, Player: model.PlayerIdentity{ID: player}}, 0)
			_, _ = store.Get(ctx, token)
			if i%2 == 0 {
				_ = store.Delete(ctx, token)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.sessions, 25)
}

func (s *MemoryStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
