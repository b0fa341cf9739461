package ports

import (
	"context"

	"github.com/google/uuid"
)

// InsightGenerator produces the analytics artifact for a household. The
// artifact content is opaque to the caching layer; only that it is valid JSON
// is checked on the way out of the cache.
type InsightGenerator interface {
	Generate(ctx context.Context, householdID uuid.UUID) ([]byte, error)
}

// InsightService serves the cached analytics artifact, regenerating on miss
// or corrupt payload. Store unavailability is returned as an error so the
// caller can tell a broken cache from a needed regeneration.
type InsightService interface {
	Get(ctx context.Context, householdID uuid.UUID) (artifact []byte, fromCache bool, err error)
	Invalidate(ctx context.Context, householdID uuid.UUID) error
}
