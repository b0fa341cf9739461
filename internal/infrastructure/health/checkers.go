package health

import (
	"context"
	"fmt"
	"time"

	"github.com/homewarden/homewarden/internal/core/ports"
	infraDB "github.com/homewarden/homewarden/internal/infrastructure/db"
)

// dbHealthChecker wraps the database for health checks.
type dbHealthChecker struct{ db *infraDB.Database }

func (d *dbHealthChecker) Name() string                    { return "database" }
func (d *dbHealthChecker) Check(ctx context.Context) error { return d.db.DB.PingContext(ctx) }

// storeHealthChecker probes the durable key-value store with a short-lived
// write/read round trip, covering both the Redis and in-memory backends.
type storeHealthChecker struct{ store ports.DurableStore }

func (s *storeHealthChecker) Name() string { return "durable_store" }

func (s *storeHealthChecker) Check(ctx context.Context) error {
	const key = "health:probe"
	if err := s.store.Put(ctx, key, "ok", 10*time.Second); err != nil {
		return err
	}
	_, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("health probe key not readable after write")
	}
	return nil
}

// NewDBHealthChecker creates a health checker for the database.
func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker { return &dbHealthChecker{db: db} }

// NewStoreHealthChecker creates a health checker for the durable store.
func NewStoreHealthChecker(store ports.DurableStore) ports.HealthChecker {
	return &storeHealthChecker{store: store}
}
