package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/homewarden/homewarden/internal/core/domain/record"
	"github.com/homewarden/homewarden/internal/core/ports"
)

// RecordService is thin glue over the record repository. Its one
// responsibility beyond CRUD is keeping the suggestion cache honest: every
// write invalidates the household's cached suggestion sets.
type RecordService struct {
	repo        ports.RecordRepository
	suggestions ports.SuggestionService
	logger      *logrus.Logger
}

// NewRecordService wires the repository and the suggestion invalidation hook.
func NewRecordService(repo ports.RecordRepository, suggestions ports.SuggestionService, logger *logrus.Logger) *RecordService {
	return &RecordService{repo: repo, suggestions: suggestions, logger: logger}
}

// Create implements ports.RecordService.Create.
func (s *RecordService) Create(ctx context.Context, householdID, memberID uuid.UUID, input ports.CreateRecordInput) (*record.Record, error) {
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("invalid record type %q", input.Type)
	}
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	r := &record.Record{
		ID:          uuid.New(),
		HouseholdID: householdID,
		MemberID:    memberID,
		Type:        input.Type,
		Title:       input.Title,
		Fields:      input.Fields,
		Tags:        input.Tags,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	s.invalidateSuggestions(ctx, householdID)
	return r, nil
}

// Get implements ports.RecordService.Get, scoped to the household.
func (s *RecordService) Get(ctx context.Context, householdID, id uuid.UUID) (*record.Record, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.HouseholdID != householdID {
		return nil, fmt.Errorf("record not found")
	}
	return r, nil
}

// List implements ports.RecordService.List.
func (s *RecordService) List(ctx context.Context, householdID uuid.UUID, recordType record.Type, limit, offset int) ([]*record.Record, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, householdID, recordType, limit, offset)
}

// Delete implements ports.RecordService.Delete.
func (s *RecordService) Delete(ctx context.Context, householdID, id uuid.UUID) error {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if r.HouseholdID != householdID {
		return fmt.Errorf("record not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateSuggestions(ctx, householdID)
	return nil
}

func (s *RecordService) invalidateSuggestions(ctx context.Context, householdID uuid.UUID) {
	if s.suggestions == nil {
		return
	}
	if err := s.suggestions.InvalidateHousehold(ctx, householdID); err != nil && s.logger != nil {
		s.logger.WithFields(logrus.Fields{"household_id": householdID}).WithError(err).Warn("records: suggestion invalidation failed")
	}
}
