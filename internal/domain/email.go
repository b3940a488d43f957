package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RequestDecisionEmailData holds data for the moderation outcome email.
type RequestDecisionEmailData struct {
	Email      string
	Name       string
	EventID    int64
	EventTitle string
	RequestID  int64
	Status     RequestStatus
}

// Confirmed is a template helper.
func (d RequestDecisionEmailData) Confirmed() bool {
	return d.Status == RequestStatusConfirmed
}

// NotificationService defines the contract for sending domain-level emails.
type NotificationService interface {
	SendRequestDecision(ctx context.Context, data *RequestDecisionEmailData) error
}
