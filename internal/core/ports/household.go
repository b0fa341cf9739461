package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/homewarden/homewarden/internal/core/domain/household"
)

// HouseholdRepository persists households.
type HouseholdRepository interface {
	Create(ctx context.Context, h *household.Household) error
	GetByID(ctx context.Context, id uuid.UUID) (*household.Household, error)
	GetBySlug(ctx context.Context, slug string) (*household.Household, error)
	Update(ctx context.Context, h *household.Household) error
}

// HouseholdService exposes household lifecycle operations.
type HouseholdService interface {
	Create(ctx context.Context, name, slug string) (*household.Household, error)
	Get(ctx context.Context, id uuid.UUID) (*household.Household, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, settings household.Settings) (*household.Household, error)
	SetStatus(ctx context.Context, id uuid.UUID, status household.Status) (*household.Household, error)
}
