package kvstore

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// sweepProbability is the chance a Put also sweeps fully-expired entries, so
// long-running processes without a Redis binding do not grow without bound.
const sweepProbability = 0.01

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// MemoryStore implements ports.DurableStore with a process-local map. It is
// the fallback for environments without a Redis binding (local development,
// tests). State is not shared across replicas.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	now func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

// Get implements DurableStore.Get with lazy expiry.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if s.expired(e) {
		delete(s.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Put implements DurableStore.Put and opportunistically sweeps expired
// entries on a small fraction of calls.
func (s *MemoryStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
	if rand.Float64() < sweepProbability {
		s.sweepLocked()
	}
	return nil
}

// Delete implements DurableStore.Delete.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// ListKeys implements DurableStore.ListKeys, skipping expired entries.
func (s *MemoryStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k, e := range s.entries {
		if s.expired(e) {
			continue
		}
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Sweep removes every fully-expired entry and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

func (s *MemoryStore) sweepLocked() int {
	removed := 0
	for k, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Len reports the number of live entries, mainly for tests and health info.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		if !s.expired(e) {
			n++
		}
	}
	return n
}
