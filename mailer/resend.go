// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"github.com/danielhkuo/survetic/cliparse"
)

// ResendMailer sends email through the Resend API. Test addresses are
// logged instead.
type ResendMailer struct {
	client  *resend.Client
	from    string
	baseURL string
	log     LogMailer
}

func NewResendMailer(client *resend.Client, from, baseURL string) *ResendMailer {
	return &ResendMailer{
		client:  client,
		from:    from,
		baseURL: baseURL,
		log:     LogMailer{BaseURL: baseURL},
	}
}

func (m *ResendMailer) SendVerification(ctx context.Context, v Verification) error {
	if isTestAddress(v.To) {
		return m.log.SendVerification(ctx, v)
	}

	msg, err := RenderVerification(v, m.baseURL)
	if err != nil {
		return err
	}

	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{v.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}

	slog.Info("verification email sent", "to", v.To, "email_id", sent.Id)
	return nil
}

// New picks the mailer for cfg: Resend when an API key is configured,
// otherwise log-only.
func New(cfg cliparse.Config) Mailer {
	if cfg.ResendAPIKey == "" {
		slog.Warn("RESEND_API_KEY not set; verification emails will only be logged")
		return LogMailer{BaseURL: cfg.BaseURL}
	}
	return NewResendMailer(resend.NewClient(cfg.ResendAPIKey), cfg.MailFrom, cfg.BaseURL)
}
