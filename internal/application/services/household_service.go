package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/homewarden/homewarden/internal/core/domain/household"
	"github.com/homewarden/homewarden/internal/core/ports"
)

// HouseholdService implements ports.HouseholdService.
type HouseholdService struct {
	repo   ports.HouseholdRepository
	logger *logrus.Logger
}

// NewHouseholdService creates the service.
func NewHouseholdService(repo ports.HouseholdRepository, logger *logrus.Logger) *HouseholdService {
	return &HouseholdService{repo: repo, logger: logger}
}

// Create implements ports.HouseholdService.Create.
func (s *HouseholdService) Create(ctx context.Context, name, slug string) (*household.Household, error) {
	if name == "" || slug == "" {
		return nil, fmt.Errorf("name and slug are required")
	}
	if existing, err := s.repo.GetBySlug(ctx, slug); err == nil && existing != nil {
		return nil, fmt.Errorf("slug %q already in use", slug)
	}
	h := &household.Household{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		Status:    household.StatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"household_id": h.ID, "slug": slug}).Info("household created")
	}
	return h, nil
}

// Get implements ports.HouseholdService.Get.
func (s *HouseholdService) Get(ctx context.Context, id uuid.UUID) (*household.Household, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateSettings implements ports.HouseholdService.UpdateSettings.
func (s *HouseholdService) UpdateSettings(ctx context.Context, id uuid.UUID, settings household.Settings) (*household.Household, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	h.Settings = settings
	h.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// SetStatus implements ports.HouseholdService.SetStatus, enforcing the
// status transition rules.
func (s *HouseholdService) SetStatus(ctx context.Context, id uuid.UUID, status household.Status) (*household.Household, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !h.CanTransitionTo(status) {
		return nil, fmt.Errorf("invalid status transition %s -> %s", h.Status, status)
	}
	h.Status = status
	h.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, h); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"household_id": id, "status": status}).Info("household status changed")
	}
	return h, nil
}
