package kvstore

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore implements ports.DurableStore on a Redis client. Expiry is
// delegated to Redis itself; callers that need lazy-expiry semantics layer
// them on top (see the cache package).
type RedisStore struct {
	r redis.Cmdable
	// optional key prefix to namespace entries
	prefix string
}

// NewRedisStore creates a Redis-backed durable store.
func NewRedisStore(r redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{r: r, prefix: prefix}
}

func (s *RedisStore) namespaced(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Get implements DurableStore.Get.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.r.Get(ctx, s.namespaced(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Put implements DurableStore.Put.
func (s *RedisStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.r.Set(ctx, s.namespaced(key), value, ttl).Err()
}

// Delete implements DurableStore.Delete.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.r.Del(ctx, s.namespaced(key)).Err()
}

// ListKeys implements DurableStore.ListKeys via SCAN so large keyspaces do
// not block the server the way KEYS would.
func (s *RedisStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	match := s.namespaced(prefix) + "*"
	for {
		batch, next, err := s.r.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range batch {
			if s.prefix != "" {
				k = k[len(s.prefix)+1:]
			}
			keys = append(keys, k)
		}
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}
