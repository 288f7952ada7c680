package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache backed by a Redis instance, for hosts that want computed
// results shared across processes. Values are stored as JSON under a
// namespaced key with the configured TTL. Redis failures degrade to cache
// misses; they never surface to the caller.
type Redis[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects a typed cache to the Redis at addr. prefix namespaces the
// keys so multiple caches can share one instance.
func NewRedis[T any](addr, prefix string, ttl time.Duration) *Redis[T] {
	return &Redis[T]{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *Redis[T]) Get(key string) (T, bool) {
	var zero T
	val, err := r.client.Get(context.Background(), r.prefix+key).Result()
	if err != nil {
		return zero, false
	}
	var data T
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		slog.Warn("Discarding undecodable cache entry", "key", key, "error", err)
		return zero, false
	}
	return data, true
}

func (r *Redis[T]) Set(key string, data T) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Failed to encode cache entry", "key", key, "error", err)
		return
	}
	if err := r.client.Set(context.Background(), r.prefix+key, body, r.ttl).Err(); err != nil {
		slog.Warn("Failed to store cache entry", "key", key, "error", err)
	}
}

func (r *Redis[T]) Delete(key string) {
	if err := r.client.Del(context.Background(), r.prefix+key).Err(); err != nil {
		slog.Warn("Failed to delete cache entry", "key", key, "error", err)
	}
}

// Close releases the underlying Redis connection.
func (r *Redis[T]) Close() error {
	return r.client.Close()
}
