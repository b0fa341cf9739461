package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/homewarden/homewarden/internal/core/domain/record"
	"github.com/homewarden/homewarden/internal/core/domain/suggestion"
)

// SuggestQuery identifies one auto-completion request.
type SuggestQuery struct {
	HouseholdID uuid.UUID
	ActorID     uuid.UUID
	RecordType  record.Type
	Field       string
	// CurrentValue is what the caller has already typed; it is excluded
	// from every output bucket.
	CurrentValue string
}

// SuggestionService serves ranked auto-completion buckets, computed from
// recent record history and cached per household.
type SuggestionService interface {
	Suggest(ctx context.Context, q SuggestQuery) (*suggestion.Result, error)
	// InvalidateHousehold drops every cached suggestion set for the
	// household. Called after any record write.
	InvalidateHousehold(ctx context.Context, householdID uuid.UUID) error
}
