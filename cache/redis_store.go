package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of a shared go-redis client. Every
// operation is bounded by opTimeout so that a slow or unreachable Redis
// degrades to a cache miss instead of stalling the request.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	opTimeout time.Duration
}

// NewRedisStore wraps an established Redis client. The client is expected
// to be created at process start and closed at shutdown. The prefix is
// prepended to every key so multiple deployments can share one instance.
func NewRedisStore(client *redis.Client, prefix string, opTimeout time.Duration) *RedisStore {
	if opTimeout <= 0 {
		opTimeout = 200 * time.Millisecond
	}
	return &RedisStore{
		client:    client,
		prefix:    prefix,
		opTimeout: opTimeout,
	}
}

func (s *RedisStore) k(key string) string {
	return s.prefix + key
}

func (s *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

// Get returns the value at key
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	value, err := s.client.Get(ctx, s.k(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}

	return value, true, nil
}

// Set stores value under key with the given TTL
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.client.Set(ctx, s.k(key), value, ttl).Err()
}

// Del removes the given keys
func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = s.k(key)
	}

	return s.client.Del(ctx, prefixed...).Err()
}

// SAdd adds members to the set at key and refreshes its TTL
func (s *RedisStore) SAdd(ctx context.Context, key string, ttl time.Duration, members ...string) error {
	if len(members) == 0 {
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	args := make([]any, len(members))
	for i, m := range members {
		args[i] = m
	}

	if err := s.client.SAdd(ctx, s.k(key), args...).Err(); err != nil {
		return err
	}
	if ttl > 0 {
		return s.client.Expire(ctx, s.k(key), ttl).Err()
	}

	return nil
}

// SRem removes a member from the set at key
func (s *RedisStore) SRem(ctx context.Context, key, member string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.client.SRem(ctx, s.k(key), member).Err()
}

// SMembers returns the members of the set at key. The EXISTS check lets
// callers tell an absent set apart from an empty one.
func (s *RedisStore) SMembers(ctx context.Context, key string) ([]string, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	exists, err := s.client.Exists(ctx, s.k(key)).Result()
	if err != nil {
		return nil, false, err
	}
	if exists == 0 {
		return nil, false, nil
	}

	members, err := s.client.SMembers(ctx, s.k(key)).Result()
	if err != nil {
		return nil, false, err
	}

	return members, true, nil
}

// Ping verifies connectivity
func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
