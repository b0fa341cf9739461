package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/homewarden/homewarden/internal/core/ports"
)

// EmailConfig holds email service configuration
type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	BaseURL        string
}

// EmailService implements ports.EmailService on SendGrid.
type EmailService struct {
	config *EmailConfig
	logger *logrus.Logger
	client *sendgrid.Client
}

// NewEmailService creates a new email service instance
func NewEmailService(config *EmailConfig, logger *logrus.Logger) (ports.EmailService, error) {
	if config.SendGridAPIKey == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	return &EmailService{
		config: config,
		logger: logger,
		client: sendgrid.NewSendClient(config.SendGridAPIKey),
	}, nil
}

// SendInvitationEmail implements ports.EmailService.SendInvitationEmail.
func (s *EmailService) SendInvitationEmail(ctx context.Context, email, householdName, displayName string) error {
	from := mail.NewEmail(s.config.FromName, s.config.FromEmail)
	to := mail.NewEmail(displayName, email)
	subject := fmt.Sprintf("You've been added to %s on HomeWarden", householdName)
	plain := fmt.Sprintf(
		"Hi %s,\n\nYou've been added as a member of %s.\nSign in at %s to get started.\n",
		displayName, householdName, s.config.BaseURL)
	message := mail.NewSingleEmail(from, subject, to, plain, "")

	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("send invitation email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("send invitation email: sendgrid status %d", resp.StatusCode)
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"household": householdName}).Debug("invitation email sent")
	}
	return nil
}
