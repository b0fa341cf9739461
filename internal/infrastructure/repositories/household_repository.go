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

	"github.com/homewarden/homewarden/internal/core/domain/household"
	"github.com/homewarden/homewarden/internal/core/ports"
	"github.com/homewarden/homewarden/internal/infrastructure/db"
)

type householdRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewHouseholdRepository creates a Postgres-backed household repository.
func NewHouseholdRepository(database *db.Database, logger *logrus.Logger) ports.HouseholdRepository {
	return &householdRepository{db: database, logger: logger}
}

type householdRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	Status    string    `db:"status"`
	Settings  []byte    `db:"settings"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row *householdRow) toDomain() (*household.Household, error) {
	h := &household.Household{
		ID:        row.ID,
		Name:      row.Name,
		Slug:      row.Slug,
		Status:    household.Status(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if len(row.Settings) > 0 {
		if err := json.Unmarshal(row.Settings, &h.Settings); err != nil {
			return nil, fmt.Errorf("decode household settings: %w", err)
		}
	}
	return h, nil
}

func (r *householdRepository) Create(ctx context.Context, h *household.Household) error {
	settings, err := json.Marshal(h.Settings)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO households (id, name, slug, status, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.DB.ExecContext(ctx, query, h.ID, h.Name, h.Slug, h.Status, settings, h.CreatedAt, h.UpdatedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"household_id": h.ID}).WithError(err).Error("db: failed to insert household")
		}
		return err
	}
	return nil
}

func (r *householdRepository) GetByID(ctx context.Context, id uuid.UUID) (*household.Household, error) {
	var row householdRow
	err := r.db.DB.GetContext(ctx, &row, `SELECT * FROM households WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("household not found")
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (r *householdRepository) GetBySlug(ctx context.Context, slug string) (*household.Household, error) {
	var row householdRow
	err := r.db.DB.GetContext(ctx, &row, `SELECT * FROM households WHERE slug = $1`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("household not found")
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (r *householdRepository) Update(ctx context.Context, h *household.Household) error {
	settings, err := json.Marshal(h.Settings)
	if err != nil {
		return err
	}
	query := `
		UPDATE households
		SET name = $2, slug = $3, status = $4, settings = $5, updated_at = $6
		WHERE id = $1`
	res, err := r.db.DB.ExecContext(ctx, query, h.ID, h.Name, h.Slug, h.Status, settings, h.UpdatedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"household_id": h.ID}).WithError(err).Error("db: failed to update household")
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("household not found")
	}
	return nil
}
