package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/homewarden/homewarden/internal/core/domain/member"
	"github.com/homewarden/homewarden/internal/core/ports"
	"github.com/homewarden/homewarden/internal/utils"
)

// MemberService implements ports.MemberService.
type MemberService struct {
	repo       ports.MemberRepository
	households ports.HouseholdRepository
	email      ports.EmailService
	logger     *logrus.Logger
}

// NewMemberService creates the service.
func NewMemberService(repo ports.MemberRepository, households ports.HouseholdRepository, email ports.EmailService, logger *logrus.Logger) *MemberService {
	return &MemberService{repo: repo, households: households, email: email, logger: logger}
}

// Add implements ports.MemberService.Add. The invitation email is fire and
// forget; a delivery failure never rolls back the member.
func (s *MemberService) Add(ctx context.Context, householdID uuid.UUID, input ports.CreateMemberInput) (*member.Member, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if err := utils.ValidatePasswordStrength(input.Password); err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("email already registered")
	}

	h, err := s.households.GetByID(ctx, householdID)
	if err != nil {
		return nil, err
	}
	if !h.CanAccess() {
		return nil, fmt.Errorf("household is not active")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := input.Role
	if role == "" {
		role = member.RoleAdult
	}
	m := &member.Member{
		ID:           uuid.New(),
		HouseholdID:  householdID,
		Email:        email,
		DisplayName:  input.DisplayName,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	if s.email != nil {
		if err := s.email.SendInvitationEmail(ctx, email, h.Name, m.DisplayName); err != nil && s.logger != nil {
			s.logger.WithFields(logrus.Fields{"household_id": householdID}).WithError(err).Warn("members: invitation email failed")
		}
	}
	return m, nil
}

// Get implements ports.MemberService.Get.
func (s *MemberService) Get(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	return s.repo.GetByID(ctx, id)
}

// List implements ports.MemberService.List.
func (s *MemberService) List(ctx context.Context, householdID uuid.UUID) ([]*member.Member, error) {
	return s.repo.ListByHousehold(ctx, householdID)
}

// Remove implements ports.MemberService.Remove, scoped to the household. The
// last owner cannot be removed.
func (s *MemberService) Remove(ctx context.Context, householdID, memberID uuid.UUID) error {
	m, err := s.repo.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if m.HouseholdID != householdID {
		return fmt.Errorf("member not found")
	}
	if m.Role == member.RoleOwner {
		all, err := s.repo.ListByHousehold(ctx, householdID)
		if err != nil {
			return err
		}
		owners := 0
		for _, other := range all {
			if other.Role == member.RoleOwner {
				owners++
			}
		}
		if owners <= 1 {
			return fmt.Errorf("cannot remove the last owner")
		}
	}
	return s.repo.Delete(ctx, memberID)
}
