package ports

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	MemberID    uuid.UUID
	HouseholdID uuid.UUID
	Role        string
}

// AuthService is thin identity plumbing: it verifies member credentials and
// signs/verifies the access tokens the rest of the API consumes as caller
// identity. Session management is deliberately absent.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, identity *Identity, err error)
	Verify(ctx context.Context, token string) (*Identity, error)
}
