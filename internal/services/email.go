package services

import (
	"context"
	"fmt"

	"congregationhub/internal/domain"
)

type emailService struct {
	mailer domain.Mailer
}

// NewEmailService returns an EmailService that sends through the given Mailer.
func NewEmailService(mailer domain.Mailer) domain.EmailService {
	return &emailService{mailer: mailer}
}

// SendGuestFollowUp sends the first-time guest follow-up email.
func (s *emailService) SendGuestFollowUp(ctx context.Context, data *domain.GuestFollowUpEmailData) error {
	if data == nil || data.Email == "" {
		return fmt.Errorf("guest follow-up data is missing an email address")
	}
	subject := fmt.Sprintf("Thanks for visiting us at %s", data.EventTitle)
	text := fmt.Sprintf(
		"Hi %s,\n\nThank you for joining us at %s. We'd love to see you again!\n\nIf there is anything we can pray for or help with, just reply to this email.\n",
		data.Name, data.EventTitle,
	)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Thank you for joining us at <strong>%s</strong>. We'd love to see you again!</p><p>If there is anything we can pray for or help with, just reply to this email.</p>",
		data.Name, data.EventTitle,
	)
	if err := s.mailer.Send(data.Email, subject, html, text); err != nil {
		return fmt.Errorf("failed to send guest follow-up email: %w", err)
	}
	return nil
}
