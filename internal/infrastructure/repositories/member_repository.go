package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/homewarden/homewarden/internal/core/domain/member"
	"github.com/homewarden/homewarden/internal/core/ports"
	"github.com/homewarden/homewarden/internal/infrastructure/db"
)

type memberRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewMemberRepository creates a Postgres-backed member repository.
func NewMemberRepository(database *db.Database, logger *logrus.Logger) ports.MemberRepository {
	return &memberRepository{db: database, logger: logger}
}

func (r *memberRepository) Create(ctx context.Context, m *member.Member) error {
	query := `
		INSERT INTO members (id, household_id, email, display_name, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.DB.ExecContext(ctx, query,
		m.ID, m.HouseholdID, m.Email, m.DisplayName, m.PasswordHash, m.Role, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"household_id": m.HouseholdID}).WithError(err).Error("db: failed to insert member")
		}
		return err
	}
	return nil
}

func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	var m member.Member
	err := r.db.DB.GetContext(ctx, &m, `SELECT * FROM members WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*member.Member, error) {
	var m member.Member
	err := r.db.DB.GetContext(ctx, &m, `SELECT * FROM members WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepository) ListByHousehold(ctx context.Context, householdID uuid.UUID) ([]*member.Member, error) {
	var members []*member.Member
	err := r.db.DB.SelectContext(ctx, &members,
		`SELECT * FROM members WHERE household_id = $1 ORDER BY created_at`, householdID)
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.DB.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("member not found")
	}
	return nil
}
