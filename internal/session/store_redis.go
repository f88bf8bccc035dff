// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/scholar/internal/platform/constants"
)

// RedisStore keeps sessions as JSON values whose key TTL equals the session TTL.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed Store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(id string) string {
	return constants.RedisPrefixSession + id
}

/*
Get retrieves the session stored under id.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Session: Decoded session
  - error: ErrNotFound when the key is absent or expired
*/
func (repository *RedisStore) Get(context context.Context, id string) (*Session, error) {
	raw, err := repository.client.Get(context, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("redis_session_decode_failed: %w", err)
	}
	return &session, nil
}

/*
Save writes the session with a key TTL of ttl.

Parameters:
  - context: context.Context
  - session: *Session
  - ttl: time.Duration

Returns:
  - error: Encoding or connectivity failures
*/
func (repository *RedisStore) Save(context context.Context, session *Session, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_session_encode_failed: %w", err)
	}

	if err := repository.client.Set(context, redisKey(session.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

// Delete removes the key, which also cancels its expiry.
func (repository *RedisStore) Delete(context context.Context, id string) error {
	if err := repository.client.Del(context, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}

// Purge is a no-op: Redis expires keys on its own.
func (repository *RedisStore) Purge(context.Context) (int, error) {
	return 0, nil
}
