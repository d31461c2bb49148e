// Package email sends deadline reminder emails through the Resend API.
package email

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"

	notificationapp "github.com/bidboard/backend/internal/application/notification"
	"github.com/bidboard/backend/internal/infrastructure/config"
)

// Ensure ResendSender implements EmailSender
var _ notificationapp.EmailSender = (*ResendSender)(nil)

// ResendSender delivers reminder emails through Resend
type ResendSender struct {
	client    *resend.Client
	fromEmail string
	fromName  string
	logger    *zap.Logger
}

// NewResendSender creates a sender from configuration
func NewResendSender(cfg *config.EmailConfig, logger *zap.Logger) (*ResendSender, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("resend api key is required")
	}
	if cfg.FromEmail == "" {
		return nil, errors.New("email from address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	fromName := cfg.FromName
	if fromName == "" {
		fromName = "BidBoard"
	}
	return &ResendSender{
		client:    resend.NewClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  fromName,
		logger:    logger,
	}, nil
}

// SendReminder sends a deadline reminder email
func (s *ResendSender) SendReminder(ctx context.Context, toEmail, toName, subject, body string) error {
	if toEmail == "" {
		return errors.New("recipient email is required")
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    reminderHTML(toName, subject, body),
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}

	s.logger.Debug("sent reminder email",
		zap.String("to", toEmail),
		zap.String("email_id", sent.Id))
	return nil
}

func reminderHTML(name, subject, body string) string {
	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + html.EscapeString(name)
	}
	subject = html.EscapeString(subject)
	body = html.EscapeString(body)
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:600px">
<p>%s,</p>
<p><strong>%s</strong></p>
<p>%s</p>
<p>Sign in to BidBoard to review the listing before the deadline.</p>
</div>`, greeting, subject, body)
}
