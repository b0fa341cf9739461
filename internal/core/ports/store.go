package ports

import (
	"context"
	"time"
)

// DurableStore is the one shared, durable coordination point between
// stateless request handlers: an eventually-consistent key-value store.
// Writes may not be visible to an immediately following read from another
// process, and read-modify-write sequences are not atomic. Implementations
// must be safe for concurrent use.
type DurableStore interface {
	// Get returns the value for key. ok=false means the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Put stores value under key, expiring after ttl (ttl <= 0 means no
	// expiry if the backend supports that).
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key; absence is not an error.
	Delete(ctx context.Context, key string) error
	// ListKeys returns the keys currently stored under prefix.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}
