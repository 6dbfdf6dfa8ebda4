package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/topicrooms/internal/model"
)

const maxWatchRetries = 10

// RedisStore keeps sessions in Redis with native key expiry
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a session store sharing an existing client
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, token)
}

func (s *RedisStore) playerIndexKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_sessions:%s", s.prefix, id)
}

func (s *RedisStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	return s.watch(ctx, sess.Token, func(tx *redis.Tx) error {
		prev, err := s.get(ctx, tx, sess.Token)
		if err != nil && !errors.Is(err, ErrNoSession) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if prev != nil && prev.Player.ID != sess.Player.ID {
				pipe.SRem(ctx, s.playerIndexKey(prev.Player.ID), sess.Token)
			}
			pipe.Set(ctx, s.sessionKey(sess.Token), data, ttl)
			idx := s.playerIndexKey(sess.Player.ID)
			pipe.SAdd(ctx, idx, sess.Token)
			if ttl > 0 {
				pipe.Expire(ctx, idx, ttl)
			}
			return nil
		})
		return err
	})
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	return s.get(ctx, s.client, token)
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) get(ctx context.Context, g getter, token string) (*Session, error) {
	data, err := g.Get(ctx, s.sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.watch(ctx, token, func(tx *redis.Tx) error {
		sess, err := s.get(ctx, tx, token)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, s.sessionKey(token))
			pipe.SRem(ctx, s.playerIndexKey(sess.Player.ID), token)
			return nil
		})
		return err
	})
}

// watch runs fn as an optimistic transaction on the token's session key,
// retrying while a concurrent writer keeps invalidating the WATCH
func (s *RedisStore) watch(ctx context.Context, token string, fn func(tx *redis.Tx) error) error {
	for i := 0; i < maxWatchRetries; i++ {
		err := s.client.Watch(ctx, fn, s.sessionKey(token))
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

func (s *RedisStore) DeleteForPlayer(ctx context.Context, playerID model.PlayerID) (int, error) {
	idx := s.playerIndexKey(playerID)
	tokens, err := s.client.SMembers(ctx, idx).Result()
	if err != nil {
		return 0, err
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, s.sessionKey(token))
	}

	var del *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(keys) > 0 {
			del = pipe.Del(ctx, keys...)
		}
		pipe.Del(ctx, idx)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if del == nil {
		return 0, nil
	}
	return int(del.Val()), nil
}

// DeleteExpired is a no-op: Redis expires session keys itself
func (s *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}
