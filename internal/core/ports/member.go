package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/homewarden/homewarden/internal/core/domain/member"
)

// MemberRepository persists household members.
type MemberRepository interface {
	Create(ctx context.Context, m *member.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*member.Member, error)
	GetByEmail(ctx context.Context, email string) (*member.Member, error)
	ListByHousehold(ctx context.Context, householdID uuid.UUID) ([]*member.Member, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateMemberInput carries the fields needed to add a member.
type CreateMemberInput struct {
	Email       string
	DisplayName string
	Password    string
	Role        member.Role
}

// MemberService manages household membership.
type MemberService interface {
	Add(ctx context.Context, householdID uuid.UUID, input CreateMemberInput) (*member.Member, error)
	Get(ctx context.Context, id uuid.UUID) (*member.Member, error)
	List(ctx context.Context, householdID uuid.UUID) ([]*member.Member, error)
	Remove(ctx context.Context, householdID, memberID uuid.UUID) error
}
