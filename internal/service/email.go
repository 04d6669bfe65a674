package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	fromEmail string
	clientURL string
	appName   string
	isDev     bool
}

func NewEmailService(apiKey, fromEmail, clientURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		clientURL: clientURL,
		appName:   appName,
		isDev:     isDev,
	}
}

func (s *EmailService) send(emailType, to, subject, body string) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", emailType, "to", to, "subject", subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(context.Background(), params)
	if err == nil {
		slog.Info("email sent", "type", emailType, "to", to)
	}
	return err
}

func (s *EmailService) SendVerificationEmail(email, code, name string) error {
	subject, body := verificationEmailTemplate(name, code, s.appName)
	return s.send("verification", email, subject, body)
}

func (s *EmailService) SendWelcomeEmail(email, name string) error {
	subject, body := welcomeEmailTemplate(name, s.clientURL, s.appName)
	return s.send("welcome", email, subject, body)
}

// SendPasswordResetEmail embeds the reset token in a client-side URL, since
// the reset form lives in the SPA.
func (s *EmailService) SendPasswordResetEmail(email, token, name string) error {
	resetURL := fmt.Sprintf("%s/reset-password/%s", s.clientURL, token)
	subject, body := passwordResetEmailTemplate(name, resetURL, s.appName)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "password_reset", "to", email, "subject", subject, "url", resetURL)
		return nil
	}
	return s.send("password_reset", email, subject, body)
}

func (s *EmailService) SendResetSuccessEmail(email, name string) error {
	subject, body := resetSuccessEmailTemplate(name, s.appName)
	return s.send("reset_success", email, subject, body)
}
