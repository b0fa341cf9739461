package ports

import (
	"context"
)

// EmailService defines the interface for email operations
type EmailService interface {
	// SendInvitationEmail notifies a newly added member about their
	// household account. Failures are logged by implementations and must
	// not block the member creation flow.
	SendInvitationEmail(ctx context.Context, email, householdName, displayName string) error
}
