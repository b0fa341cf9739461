package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/homewarden/homewarden/internal/core/ports"
)

// InsightConfig tunes the cached analytics artifact.
type InsightConfig struct {
	TTL       time.Duration
	KeyPrefix string
}

// InsightService implements ports.InsightService: cache-aside around an
// opaque artifact generator. The artifact's content is never interpreted
// here; only that the cached payload is still parseable JSON.
type InsightService struct {
	generator ports.InsightGenerator
	cache     ports.ArtifactCache
	cfg       InsightConfig
	logger    *logrus.Logger
}

// NewInsightService wires the generator and the cache.
func NewInsightService(generator ports.InsightGenerator, cache ports.ArtifactCache, cfg InsightConfig, logger *logrus.Logger) *InsightService {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "insight"
	}
	return &InsightService{generator: generator, cache: cache, cfg: cfg, logger: logger}
}

func (s *InsightService) key(householdID uuid.UUID) string {
	return s.cfg.KeyPrefix + ":" + householdID.String()
}

// Get implements ports.InsightService.Get. A corrupt cached artifact is
// regenerated; a store failure propagates so the caller can distinguish
// "need to regenerate" from "cache is broken".
func (s *InsightService) Get(ctx context.Context, householdID uuid.UUID) ([]byte, bool, error) {
	key := s.key(householdID)

	b, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("insights: %w", err)
	}
	if ok {
		if json.Valid(b) {
			return b, true, nil
		}
		if s.logger != nil {
			s.logger.WithField("household_id", householdID).Warn("insights: corrupt cached artifact, regenerating")
		}
		_ = s.cache.InvalidatePrefix(ctx, key)
	}

	artifact, err := s.generator.Generate(ctx, householdID)
	if err != nil {
		return nil, false, fmt.Errorf("insights: generate: %w", err)
	}
	if perr := s.cache.Put(ctx, key, artifact, s.cfg.TTL); perr != nil && s.logger != nil {
		s.logger.WithError(perr).Warn("insights: cache write failed")
	}
	return artifact, false, nil
}

// Invalidate implements ports.InsightService.Invalidate.
func (s *InsightService) Invalidate(ctx context.Context, householdID uuid.UUID) error {
	return s.cache.InvalidatePrefix(ctx, s.key(householdID))
}
