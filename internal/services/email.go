package services

import (
	"context"
	"fmt"
	"log/slog"

	"explorewithme/internal/domain"
)

const requestDecisionTemplate = "request_decision"

type notificationService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewNotificationService returns a NotificationService that uses the given Mailer and template renderer.
func NewNotificationService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.NotificationService {
	return &notificationService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendRequestDecision tells a requester whether their participation request was confirmed or rejected.
func (s *notificationService) SendRequestDecision(ctx context.Context, data *domain.RequestDecisionEmailData) error {
	if data == nil {
		return fmt.Errorf("request decision data is nil")
	}
	if data.Email == "" {
		return fmt.Errorf("requester of request %d has no email", data.RequestID)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(requestDecisionTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", requestDecisionTemplate, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send request decision email: %w", err)
	}
	s.logger.InfoContext(ctx, "request decision email sent", "request_id", data.RequestID, "status", data.Status)
	return nil
}
