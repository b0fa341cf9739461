package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/homewarden/homewarden/internal/infrastructure/kvstore"
)

// countingStore wraps a MemoryStore and counts writes so persistence
// skipping is observable.
type countingStore struct {
	*kvstore.MemoryStore
	puts int
}

func (c *countingStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	c.puts++
	return c.MemoryStore.Put(ctx, key, value, ttl)
}

func newTestCounter(t *testing.T, opts Options) (*WindowCounter, *countingStore, *time.Time) {
	t.Helper()
	store := &countingStore{MemoryStore: kvstore.NewMemoryStore()}
	w := NewWindowCounter(store, opts, logrus.New())
	base := time.Now()
	w.now = func() time.Time { return base }
	return w, store, &base
}

func TestWindowCounter_CountsWithinWindow(t *testing.T) {
	w, _, _ := newTestCounter(t, Options{PersistInterval: 0})
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		count, _, err := w.IncrementAndCheck(ctx, "edge:1.2.3.4", time.Minute, 3)
		require.NoError(t, err)
		require.Equal(t, i, count)
	}

	count, resetAt, err := w.IncrementAndCheck(ctx, "edge:1.2.3.4", time.Minute, 3)
	require.NoError(t, err)
	require.Equal(t, 4, count)
	require.False(t, resetAt.IsZero())
}

func TestWindowCounter_IdentifiersAreIndependent(t *testing.T) {
	w, _, _ := newTestCounter(t, Options{PersistInterval: 0})
	ctx := context.Background()

	count, _, err := w.IncrementAndCheck(ctx, "edge:a", time.Minute, 5)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	count, _, err = w.IncrementAndCheck(ctx, "edge:b", time.Minute, 5)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestWindowCounter_WindowSlides(t *testing.T) {
	w, _, base := newTestCounter(t, Options{PersistInterval: 0})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := w.IncrementAndCheck(ctx, "edge:a", time.Minute, 10)
		require.NoError(t, err)
	}

	// 61s later the earlier instants have slid out.
	*base = base.Add(61 * time.Second)
	count, _, err := w.IncrementAndCheck(ctx, "edge:a", time.Minute, 10)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestWindowCounter_ResetAtDerivesFromOldestInstant(t *testing.T) {
	w, _, base := newTestCounter(t, Options{PersistInterval: 0})
	ctx := context.Background()

	start := *base
	_, resetAt, err := w.IncrementAndCheck(ctx, "edge:a", time.Minute, 10)
	require.NoError(t, err)
	require.Equal(t, start.UnixMilli()+time.Minute.Milliseconds(), resetAt.UnixMilli())

	*base = base.Add(10 * time.Second)
	_, resetAt, err = w.IncrementAndCheck(ctx, "edge:a", time.Minute, 10)
	require.NoError(t, err)
	// Oldest instant is still the first request.
	require.Equal(t, start.UnixMilli()+time.Minute.Milliseconds(), resetAt.UnixMilli())
}

func TestWindowCounter_SkipsWritesUntilStale(t *testing.T) {
	w, store, base := newTestCounter(t, Options{
		PersistInterval:   30 * time.Second,
		NearLimitFraction: 0.8,
	})
	ctx := context.Background()

	// First increment has never been persisted, so it writes.
	_, _, err := w.IncrementAndCheck(ctx, "edge:a", time.Minute, 100)
	require.NoError(t, err)
	require.Equal(t, 1, store.puts)

	// Low-count increments inside the persist interval skip the write.
	for i := 0; i < 5; i++ {
		*base = base.Add(time.Second)
		_, _, err = w.IncrementAndCheck(ctx, "edge:a", time.Minute, 100)
		require.NoError(t, err)
	}
	require.Equal(t, 1, store.puts)

	// Past the interval the record is stale and writes again.
	*base = base.Add(31 * time.Second)
	_, _, err = w.IncrementAndCheck(ctx, "edge:a", time.Minute, 100)
	require.NoError(t, err)
	require.Equal(t, 2, store.puts)
}

func TestWindowCounter_NearLimitForcesWrite(t *testing.T) {
	w, store, base := newTestCounter(t, Options{
		PersistInterval:   30 * time.Second,
		NearLimitFraction: 0.8,
	})
	ctx := context.Background()

	// Far from the limit, only the initial write persists: the second
	// increment re-reads the one stored instant and skips.
	for i := 0; i < 2; i++ {
		*base = base.Add(time.Second)
		_, _, err := w.IncrementAndCheck(ctx, "edge:low", time.Minute, 100)
		require.NoError(t, err)
	}
	require.Equal(t, 1, store.puts)

	// With limit 2 the same pattern crosses 80% on the second increment
	// and is written back despite the fresh record.
	*base = base.Add(time.Second)
	_, _, err := w.IncrementAndCheck(ctx, "edge:near", time.Minute, 2)
	require.NoError(t, err)
	require.Equal(t, 2, store.puts)

	*base = base.Add(time.Second)
	count, _, err := w.IncrementAndCheck(ctx, "edge:near", time.Minute, 2)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Equal(t, 3, store.puts)
}

func TestWindowCounter_SkippedWritesUndercountAfterReload(t *testing.T) {
	w, store, base := newTestCounter(t, Options{
		PersistInterval:   30 * time.Second,
		NearLimitFraction: 0.9,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		*base = base.Add(time.Second)
		_, _, err := w.IncrementAndCheck(ctx, "edge:a", time.Minute, 100)
		require.NoError(t, err)
	}
	require.Equal(t, 1, store.puts)

	// A fresh counter over the same store sees only the persisted state:
	// the skipped increments are gone. Accepted trade-off.
	w2 := NewWindowCounter(store, Options{PersistInterval: 30 * time.Second}, logrus.New())
	w2.now = w.now
	count, _, err := w2.IncrementAndCheck(ctx, "edge:a", time.Minute, 100)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestWindowCounter_CorruptRecordStartsFresh(t *testing.T) {
	w, store, _ := newTestCounter(t, Options{PersistInterval: 0})
	ctx := context.Background()

	require.NoError(t, store.MemoryStore.Put(ctx, "edge:a", "{not json", time.Minute))

	count, _, err := w.IncrementAndCheck(ctx, "edge:a", time.Minute, 10)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, fmt.Errorf("store down")
}
func (failingStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return fmt.Errorf("store down")
}
func (failingStore) Delete(ctx context.Context, key string) error { return fmt.Errorf("store down") }
func (failingStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	return nil, fmt.Errorf("store down")
}

func TestWindowCounter_StoreErrorSurfaces(t *testing.T) {
	w := NewWindowCounter(failingStore{}, DefaultOptions(), logrus.New())
	_, _, err := w.IncrementAndCheck(context.Background(), "edge:a", time.Minute, 10)
	require.Error(t, err)
}
