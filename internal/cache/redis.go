package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store using Redis as the backing store.
// Keys are stored as plain strings; namespaces are distinguished by key
// prefix ("search_", "isearch_", ...), matching the cache layout the
// crawler-facing API has always used.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed cache store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, time.Duration, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", 0, false, nil
		}
		return "", 0, false, err
	}
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return "", 0, false, err
	}
	if ttl < 0 {
		// key vanished between GET and TTL, or has no expiry; treat as absent
		return "", 0, false, nil
	}
	return val, ttl, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		// guard: a present key must always carry a positive TTL
		ttl = time.Second
	}
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	keys := make([]string, 0, 100)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == 100 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return s.client.Del(ctx, keys...).Err()
	}
	return nil
}
