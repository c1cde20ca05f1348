package domain

import "context"

// Mailer sends a single email. Implementations may use SES or a no-op for
// local development.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// GuestFollowUpEmailData is the data for the first-time guest follow-up email.
type GuestFollowUpEmailData struct {
	Email      string
	Name       string
	EventTitle string
}

// EmailService defines outbound notification emails. Delivery failures are
// logged by callers, never surfaced to the person checking in.
type EmailService interface {
	SendGuestFollowUp(ctx context.Context, data *GuestFollowUpEmailData) error
}
