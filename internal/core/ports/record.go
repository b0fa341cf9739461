package ports

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/homewarden/homewarden/internal/core/domain/record"
)

// RecordRepository persists household records. ListRecent doubles as the
// bounded most-recent-first history source the suggestion ranking reads.
type RecordRepository interface {
	Create(ctx context.Context, r *record.Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*record.Record, error)
	// List returns records for a household, newest first, paged.
	List(ctx context.Context, householdID uuid.UUID, recordType record.Type, limit, offset int) ([]*record.Record, error)
	// ListRecent returns up to limit records of the given type, newest
	// first. recordType "" means all types.
	ListRecent(ctx context.Context, householdID uuid.UUID, recordType record.Type, limit int) ([]*record.Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateRecordInput carries the fields needed to create a record.
type CreateRecordInput struct {
	Type   record.Type
	Title  string
	Fields json.RawMessage
	Tags   []string
}

// RecordService is the application-facing record API. Writes invalidate the
// household's suggestion cache so stale completions are not served.
type RecordService interface {
	Create(ctx context.Context, householdID, memberID uuid.UUID, input CreateRecordInput) (*record.Record, error)
	Get(ctx context.Context, householdID, id uuid.UUID) (*record.Record, error)
	List(ctx context.Context, householdID uuid.UUID, recordType record.Type, limit, offset int) ([]*record.Record, error)
	Delete(ctx context.Context, householdID, id uuid.UUID) error
}
