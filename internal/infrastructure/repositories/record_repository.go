package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/homewarden/homewarden/internal/core/domain/record"
	"github.com/homewarden/homewarden/internal/core/ports"
	"github.com/homewarden/homewarden/internal/infrastructure/db"
)

type recordRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewRecordRepository creates a Postgres-backed record repository. Its
// newest-first queries double as the history source for suggestion ranking.
func NewRecordRepository(database *db.Database, logger *logrus.Logger) ports.RecordRepository {
	return &recordRepository{db: database, logger: logger}
}

type recordRow struct {
	ID          uuid.UUID       `db:"id"`
	HouseholdID uuid.UUID       `db:"household_id"`
	MemberID    uuid.UUID       `db:"member_id"`
	Type        string          `db:"type"`
	Title       string          `db:"title"`
	Fields      json.RawMessage `db:"fields"`
	Tags        []byte          `db:"tags"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (row *recordRow) toDomain() *record.Record {
	r := &record.Record{
		ID:          row.ID,
		HouseholdID: row.HouseholdID,
		MemberID:    row.MemberID,
		Type:        record.Type(row.Type),
		Title:       row.Title,
		Fields:      row.Fields,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if len(row.Tags) > 0 {
		// Tags decode best-effort; a malformed column yields no tags
		// rather than a failed read.
		_ = json.Unmarshal(row.Tags, &r.Tags)
	}
	return r
}

func (r *recordRepository) Create(ctx context.Context, rec *record.Record) error {
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return err
	}
	fields := rec.Fields
	if len(fields) == 0 {
		fields = json.RawMessage("{}")
	}
	query := `
		INSERT INTO records (id, household_id, member_id, type, title, fields, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.db.DB.ExecContext(ctx, query,
		rec.ID, rec.HouseholdID, rec.MemberID, rec.Type, rec.Title, []byte(fields), tags, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"household_id": rec.HouseholdID, "type": rec.Type}).WithError(err).Error("db: failed to insert record")
		}
		return err
	}
	return nil
}

func (r *recordRepository) GetByID(ctx context.Context, id uuid.UUID) (*record.Record, error) {
	var row recordRow
	err := r.db.DB.GetContext(ctx, &row, `SELECT * FROM records WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record not found")
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *recordRepository) List(ctx context.Context, householdID uuid.UUID, recordType record.Type, limit, offset int) ([]*record.Record, error) {
	var rows []recordRow
	var err error
	if recordType == "" {
		err = r.db.DB.SelectContext(ctx, &rows, `
			SELECT * FROM records WHERE household_id = $1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			householdID, limit, offset)
	} else {
		err = r.db.DB.SelectContext(ctx, &rows, `
			SELECT * FROM records WHERE household_id = $1 AND type = $2
			ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
			householdID, recordType, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	out := make([]*record.Record, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (r *recordRepository) ListRecent(ctx context.Context, householdID uuid.UUID, recordType record.Type, limit int) ([]*record.Record, error) {
	return r.List(ctx, householdID, recordType, limit, 0)
}

func (r *recordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.DB.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record not found")
	}
	return nil
}
