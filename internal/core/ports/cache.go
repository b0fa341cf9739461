package ports

import (
	"context"
	"time"
)

// ArtifactCache is a cache-aside store for computed values with lazy expiry.
// Get must never return an entry past its expiry; an expired or corrupt entry
// is deleted opportunistically and reported as a miss. Storage failures are
// returned as errors so callers can distinguish "recompute" from "cache is
// broken".
type ArtifactCache interface {
	// Get returns the cached bytes for key. ok=false is a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put fully replaces any existing entry for key.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// InvalidatePrefix removes every entry whose key starts with prefix.
	InvalidatePrefix(ctx context.Context, prefix string) error
	// SweepExpired removes expired entries eagerly and returns how many
	// were dropped. Intended for background cleanup.
	SweepExpired(ctx context.Context) (int, error)
}
