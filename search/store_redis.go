package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keySessionGen  = "search:%s:gen"
	keySession     = "search:%s:%d"
	keySessionLock = "search:%s:%d:lock"
)

// RedisStore keeps sessions in Redis so any server instance can continue a
// stream.
type RedisStore struct {
	client  redis.UniversalClient
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisStore creates a store whose sessions expire after ttl of inactivity.
func NewRedisStore(client redis.UniversalClient, ttl, lockTTL time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, lockTTL: lockTTL}
}

func (r *RedisStore) NextGeneration(ctx context.Context, sid string) (int64, error) {
	key := fmt.Sprintf(keySessionGen, sid)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to start search generation: %w", err)
	}
	return incr.Val(), nil
}

func (r *RedisStore) CurrentGeneration(ctx context.Context, sid string) (int64, error) {
	gen, err := r.client.Get(ctx, fmt.Sprintf(keySessionGen, sid)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read search generation: %w", err)
	}
	return gen, nil
}

func (r *RedisStore) Load(ctx context.Context, sid string, gen int64) (*Session, error) {
	raw, err := r.client.Get(ctx, fmt.Sprintf(keySession, sid, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load search session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode search session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, sid string, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode search session: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, fmt.Sprintf(keySession, sid, s.Generation), raw, r.ttl)
		pipe.Expire(ctx, fmt.Sprintf(keySessionGen, sid), r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save search session: %w", err)
	}
	return nil
}

func (r *RedisStore) Acquire(ctx context.Context, sid string, gen int64) (bool, error) {
	ok, err := r.client.SetNX(ctx, fmt.Sprintf(keySessionLock, sid, gen), 1, r.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire search lock: %w", err)
	}
	return ok, nil
}

func (r *RedisStore) Release(ctx context.Context, sid string, gen int64) error {
	if err := r.client.Del(ctx, fmt.Sprintf(keySessionLock, sid, gen)).Err(); err != nil {
		return fmt.Errorf("failed to release search lock: %w", err)
	}
	return nil
}
