package draftstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps drafts in Redis so several admin workstations can share them
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. ttl <= 0 keeps drafts until deleted.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "drafts"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// Get reads the draft for key
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read draft from redis: %w", err)
	}
	return data, nil
}

// Put writes the draft, refreshing the TTL
func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.client.Set(ctx, s.redisKey(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write draft to redis: %w", err)
	}
	return nil
}

// Delete removes the draft
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft from redis: %w", err)
	}
	return nil
}

func (s *RedisStore) redisKey(key string) string {
	return s.prefix + ":" + key
}
