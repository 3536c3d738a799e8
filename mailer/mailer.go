// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package mailer sends account emails. Verification mail goes through Resend
// when an API key is configured and is otherwise logged.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"text/template"

	"github.com/yuin/goldmark"
)

const verificationSubject = "Welcome to Survetic - Verify Your Email"

// Recipients at these domains never reach a real inbox, so they are only
// logged.
var testDomains = []string{"@test.com", "@example.com", "@localhost", "@demo.com"}

// Verification is a request to send an email verification link.
type Verification struct {
	To        string
	FirstName string
	Token     string
}

// Mailer delivers account emails.
type Mailer interface {
	SendVerification(ctx context.Context, v Verification) error
}

// VerificationLink builds the link a user follows to verify their email.
func VerificationLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/verify-email?token=" + url.QueryEscape(token)
}

func isTestAddress(email string) bool {
	lower := strings.ToLower(email)
	for _, d := range testDomains {
		if strings.HasSuffix(lower, d) {
			return true
		}
	}
	return false
}

// Message is a rendered email.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

var verificationBody = template.Must(template.New("verification").Funcs(template.FuncMap{
	"md": escapeMarkdown,
}).Parse(`# Welcome to Survetic!

Hi **{{md .FirstName}}**,

Thank you for joining Survetic! To get started with creating surveys, please
verify your email address:

[Verify Email Address]({{.Link}})

If the link doesn't work, copy and paste this address into your browser:

{{.Link}}

## What you can do with Survetic

- Create surveys with multiple choice, text, rating and dropdown questions
- Share surveys with a direct link
- View response statistics as they come in
- Export your data anytime in CSV format

Welcome aboard!
**The Survetic Team**

*If you didn't create this account, you can safely ignore this email.*
`))

var (
	markdown     goldmark.Markdown
	markdownOnce sync.Once
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New()
	})
	return markdown
}

// RenderVerification renders the verification email for v. The Markdown
// source doubles as the plain-text part.
func RenderVerification(v Verification, baseURL string) (Message, error) {
	data := struct {
		FirstName string
		Link      string
	}{
		FirstName: v.FirstName,
		Link:      VerificationLink(baseURL, v.Token),
	}
	if data.FirstName == "" {
		data.FirstName = "there"
	}

	var text bytes.Buffer
	if err := verificationBody.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render verification email: %w", err)
	}

	var html bytes.Buffer
	if err := getMarkdown().Convert(text.Bytes(), &html); err != nil {
		return Message{}, fmt.Errorf("convert verification email: %w", err)
	}

	return Message{
		Subject: verificationSubject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// escapeMarkdown backslash-escapes Markdown punctuation so user-supplied
// names render literally.
func escapeMarkdown(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune("\\`*_[]<>!", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	BaseURL string
}

func (m LogMailer) SendVerification(_ context.Context, v Verification) error {
	slog.Info("verification email (not sent)",
		"to", v.To,
		"subject", verificationSubject,
		"link", VerificationLink(m.BaseURL, v.Token),
	)
	return nil
}
