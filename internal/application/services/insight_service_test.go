package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type generatorMock struct {
	GenerateFn func(ctx context.Context, householdID uuid.UUID) ([]byte, error)
}

func (m *generatorMock) Generate(ctx context.Context, householdID uuid.UUID) ([]byte, error) {
	return m.GenerateFn(ctx, householdID)
}

func TestInsightService_MissGeneratesAndCaches(t *testing.T) {
	artifact := []byte(`{"by_type":{"purchase":3}}`)
	gen := &generatorMock{GenerateFn: func(ctx context.Context, hid uuid.UUID) ([]byte, error) {
		return artifact, nil
	}}
	var cachedKey string
	var cachedValue []byte
	cache := &cacheMock{
		PutFn: func(ctx context.Context, key string, value []byte, ttl time.Duration) error {
			cachedKey, cachedValue = key, value
			return nil
		},
	}
	svc := NewInsightService(gen, cache, InsightConfig{TTL: time.Hour, KeyPrefix: "insights"}, logrus.New())

	hid := uuid.New()
	got, fromCache, err := svc.Get(context.Background(), hid)
	require.NoError(t, err)
	require.False(t, fromCache)
	require.Equal(t, artifact, got)
	require.Equal(t, "insights:"+hid.String(), cachedKey)
	require.Equal(t, artifact, cachedValue)
}

func TestInsightService_HitSkipsGenerator(t *testing.T) {
	artifact := []byte(`{"by_type":{"note":1}}`)
	gen := &generatorMock{GenerateFn: func(ctx context.Context, hid uuid.UUID) ([]byte, error) {
		t.Fatal("generator must not run on a cache hit")
		return nil, nil
	}}
	cache := &cacheMock{GetFn: func(ctx context.Context, key string) ([]byte, bool, error) {
		return artifact, true, nil
	}}
	svc := NewInsightService(gen, cache, InsightConfig{}, logrus.New())

	got, fromCache, err := svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	require.True(t, fromCache)
	require.Equal(t, artifact, got)
}

func TestInsightService_CorruptArtifactRegenerates(t *testing.T) {
	fresh := []byte(`{"rebuilt":true}`)
	gen := &generatorMock{GenerateFn: func(ctx context.Context, hid uuid.UUID) ([]byte, error) {
		return fresh, nil
	}}
	invalidated := ""
	cache := &cacheMock{
		GetFn: func(ctx context.Context, key string) ([]byte, bool, error) {
			return []byte(`{"truncated":`), true, nil
		},
		InvalidatePrefixFn: func(ctx context.Context, prefix string) error {
			invalidated = prefix
			return nil
		},
	}
	svc := NewInsightService(gen, cache, InsightConfig{KeyPrefix: "insights"}, logrus.New())

	hid := uuid.New()
	got, fromCache, err := svc.Get(context.Background(), hid)
	require.NoError(t, err)
	require.False(t, fromCache)
	require.Equal(t, fresh, got)
	require.Equal(t, "insights:"+hid.String(), invalidated)
}

func TestInsightService_StoreErrorPropagates(t *testing.T) {
	gen := &generatorMock{GenerateFn: func(ctx context.Context, hid uuid.UUID) ([]byte, error) {
		t.Fatal("generator must not run when the cache read fails")
		return nil, nil
	}}
	cache := &cacheMock{GetFn: func(ctx context.Context, key string) ([]byte, bool, error) {
		return nil, false, fmt.Errorf("store down")
	}}
	svc := NewInsightService(gen, cache, InsightConfig{}, logrus.New())

	_, _, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestInsightService_GeneratorErrorPropagates(t *testing.T) {
	gen := &generatorMock{GenerateFn: func(ctx context.Context, hid uuid.UUID) ([]byte, error) {
		return nil, fmt.Errorf("history unavailable")
	}}
	svc := NewInsightService(gen, &cacheMock{}, InsightConfig{}, logrus.New())

	_, _, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestInsightService_CacheWriteFailureIsNotFatal(t *testing.T) {
	artifact := []byte(`{"ok":true}`)
	gen := &generatorMock{GenerateFn: func(ctx context.Context, hid uuid.UUID) ([]byte, error) {
		return artifact, nil
	}}
	cache := &cacheMock{PutFn: func(ctx context.Context, key string, value []byte, ttl time.Duration) error {
		return fmt.Errorf("store down")
	}}
	svc := NewInsightService(gen, cache, InsightConfig{}, logrus.New())

	got, fromCache, err := svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	require.False(t, fromCache)
	require.Equal(t, artifact, got)
}
