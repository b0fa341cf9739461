package household

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type Household struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	Status    Status    `json:"status" db:"status"`
	Settings  Settings  `json:"settings" db:"settings"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusClosed    Status = "closed"
)

// ValidTransitions returns the valid status transitions from the current status.
func (s Status) ValidTransitions() []Status {
	switch s {
	case StatusActive:
		return []Status{StatusSuspended, StatusClosed}
	case StatusSuspended:
		return []Status{StatusActive, StatusClosed}
	case StatusClosed:
		return []Status{} // No transitions out of closed
	default:
		return []Status{}
	}
}

// IsValidTransition checks if transition to new status is valid.
func (s Status) IsValidTransition(newStatus Status) bool {
	return slices.Contains(s.ValidTransitions(), newStatus)
}

// Settings holds per-household tunables.
type Settings struct {
	// RequestsPerMinute overrides the default API admission limit when > 0.
	RequestsPerMinute int `json:"requests_per_minute"`
	// Timezone is the IANA timezone used to bucket suggestion contexts.
	Timezone string `json:"timezone"`
}

// CanAccess returns true if the household can use the application.
func (h *Household) CanAccess() bool {
	return h.Status == StatusActive
}

// CanTransitionTo checks if the household can move to a new status.
func (h *Household) CanTransitionTo(newStatus Status) bool {
	return h.Status.IsValidTransition(newStatus)
}
