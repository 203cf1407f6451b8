// Package mailer dispatches transactional email through an HTTP mail API.
package mailer

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/kinfolkhq/kinfolk-server/internal/logger"
)

// Mailer sends transactional email. Dispatch is best-effort: workflows fire
// it from a goroutine and never surface delivery failures to the caller.
type Mailer interface {
	SendVerification(ctx context.Context, to, link string) error
	SendPasswordReset(ctx context.Context, to, link string) error
}

// Client sends mail through a JSON mail API endpoint.
type Client struct {
	http   *resty.Client
	from   string
	logger *logger.Logger
}

// NewClient creates a mail API client. endpoint is the full send URL.
func NewClient(endpoint, apiKey, from string, logger *logger.Logger) *Client {
	http := resty.New().
		SetBaseURL(endpoint).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   http,
		from:   from,
		logger: logger,
	}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (c *Client) send(ctx context.Context, to, subject, text string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sendRequest{From: c.from, To: to, Subject: subject, Text: text}).
		Post("")
	if err != nil {
		return fmt.Errorf("failed to call mail api: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mail api returned status %d", resp.StatusCode())
	}
	return nil
}

func (c *Client) SendVerification(ctx context.Context, to, link string) error {
	text := fmt.Sprintf("Welcome! Please verify your email address by opening this link:\n\n%s\n", link)
	return c.send(ctx, to, "Verify your email address", text)
}

func (c *Client) SendPasswordReset(ctx context.Context, to, link string) error {
	text := fmt.Sprintf("A password reset was requested for your account. Open this link to choose a new password:\n\n%s\n\nIf you did not request this, ignore this message.\n", link)
	return c.send(ctx, to, "Reset your password", text)
}

// LogMailer logs dispatched mail instead of sending it. Used when no mail
// endpoint is configured and in tests.
type LogMailer struct {
	logger *logger.Logger
}

func NewLogMailer(logger *logger.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendVerification(_ context.Context, to, link string) error {
	m.logger.Info("mailer: verification email (not sent, no endpoint configured)", "to", to, "link", link)
	return nil
}

func (m *LogMailer) SendPasswordReset(_ context.Context, to, link string) error {
	m.logger.Info("mailer: password reset email (not sent, no endpoint configured)", "to", to, "link", link)
	return nil
}
