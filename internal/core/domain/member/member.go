package member

import (
	"time"

	"github.com/google/uuid"
)

type Member struct {
	ID           uuid.UUID `json:"id" db:"id"`
	HouseholdID  uuid.UUID `json:"household_id" db:"household_id"`
	Email        string    `json:"email" db:"email"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdult  Role = "adult"
	RoleChild  Role = "child"
	RoleViewer Role = "viewer"
)

// CanManageMembers reports whether the role may add or remove members.
func (r Role) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdult
}

// CanWriteRecords reports whether the role may create or delete records.
func (r Role) CanWriteRecords() bool {
	return r != RoleViewer
}
