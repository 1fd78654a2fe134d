package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore backs the cache with Redis so invalidation is shared across
// server instances. Errors are swallowed: the cache is best-effort and the
// store of record is always consulted on a miss.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a RedisStore from a redis URL
// (redis://[user:pass@]host:port/db). Keys are namespaced with prefix.
func NewRedisStore(redisURL, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: redis.NewClient(opts), prefix: prefix}, nil
}

func (s *RedisStore) key(k string) string {
	return s.prefix + ":" + k
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	s.client.Set(ctx, s.key(key), value, ttl)
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) {
	for _, k := range keys {
		s.client.Del(ctx, s.key(k))
	}
}

func (s *RedisStore) Clear(ctx context.Context) {
	iter := s.client.Scan(ctx, 0, s.prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		s.client.Del(ctx, iter.Val())
	}
}

// Ping verifies connectivity at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
