package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/homewarden/homewarden/internal/core/ports"
)

// envelope wraps a cached value with its own expiry instant. The store layer
// may expire entries too, but the envelope is authoritative: Get never
// returns a value at or past Exp, whatever the backend reports.
type envelope struct {
	Value     []byte `json:"v"`
	ExpiresAt int64  `json:"exp"` // unix millis
}

// TTLCache implements ports.ArtifactCache over a DurableStore with lazy
// expiry: expired and corrupt entries are deleted on the read that finds
// them. Replacement is whole-entry (marshal then Put), never in place.
type TTLCache struct {
	store  ports.DurableStore
	prefix string
	logger *logrus.Logger

	now func() time.Time
}

// NewTTLCache creates a cache namespaced under prefix.
func NewTTLCache(store ports.DurableStore, prefix string, logger *logrus.Logger) *TTLCache {
	return &TTLCache{store: store, prefix: prefix, logger: logger, now: time.Now}
}

func (c *TTLCache) namespaced(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

// Get implements ArtifactCache.Get. A corrupt envelope is a data-integrity
// problem and reads as a miss; a store failure is an infrastructure problem
// and is returned as an error.
func (c *TTLCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ns := c.namespaced(key)
	raw, ok, err := c.store.Get(ctx, ns)
	if err != nil {
		return nil, false, fmt.Errorf("cache get %q: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	var env envelope
	if uerr := json.Unmarshal([]byte(raw), &env); uerr != nil {
		if c.logger != nil {
			c.logger.WithField("key", key).WithError(uerr).Warn("cache: dropping corrupt entry")
		}
		_ = c.store.Delete(ctx, ns)
		return nil, false, nil
	}
	if c.now().UnixMilli() >= env.ExpiresAt {
		_ = c.store.Delete(ctx, ns)
		return nil, false, nil
	}
	return env.Value, true, nil
}

// Put implements ArtifactCache.Put, fully replacing any existing entry.
func (c *TTLCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache put %q: ttl must be positive", key)
	}
	env := envelope{Value: value, ExpiresAt: c.now().Add(ttl).UnixMilli()}
	b, err := json.Marshal(&env)
	if err != nil {
		return fmt.Errorf("cache put %q: %w", key, err)
	}
	// Store TTL gets a little slack so the envelope, not the backend,
	// decides when an entry dies.
	if err := c.store.Put(ctx, c.namespaced(key), string(b), ttl+time.Minute); err != nil {
		return fmt.Errorf("cache put %q: %w", key, err)
	}
	return nil
}

// InvalidatePrefix implements ArtifactCache.InvalidatePrefix.
func (c *TTLCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	keys, err := c.store.ListKeys(ctx, c.namespaced(prefix))
	if err != nil {
		return fmt.Errorf("cache invalidate %q: %w", prefix, err)
	}
	for _, k := range keys {
		if err := c.store.Delete(ctx, k); err != nil {
			return fmt.Errorf("cache invalidate %q: %w", prefix, err)
		}
	}
	return nil
}

// SweepExpired implements ArtifactCache.SweepExpired by re-reading every
// entry under the cache prefix; Get's lazy expiry does the deleting.
func (c *TTLCache) SweepExpired(ctx context.Context) (int, error) {
	keys, err := c.store.ListKeys(ctx, c.namespaced(""))
	if err != nil {
		return 0, fmt.Errorf("cache sweep: %w", err)
	}
	removed := 0
	nowMs := c.now().UnixMilli()
	for _, k := range keys {
		raw, ok, err := c.store.Get(ctx, k)
		if err != nil {
			return removed, fmt.Errorf("cache sweep: %w", err)
		}
		if !ok {
			continue
		}
		var env envelope
		if json.Unmarshal([]byte(raw), &env) != nil || nowMs >= env.ExpiresAt {
			if derr := c.store.Delete(ctx, k); derr != nil {
				return removed, fmt.Errorf("cache sweep: %w", derr)
			}
			removed++
		}
	}
	return removed, nil
}
