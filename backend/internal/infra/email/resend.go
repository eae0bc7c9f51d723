// Package email sends transactional mail through Resend.
package email

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"golang.org/x/time/rate"
)

type Config struct {
	APIKey string
	From   string
	// BaseURL overrides the Resend API root, mostly for tests.
	BaseURL string
	// RPS caps outbound calls.
	RPS     float64
	Timeout time.Duration
}

type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

type Client struct {
	from    string
	api     *resend.Client
	limiter *rate.Limiter
}

func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is empty")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("email sender address is empty")
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	api := resend.NewCustomClient(httpClient, apiKey)
	if raw := strings.TrimSpace(cfg.BaseURL); raw != "" {
		base, err := url.Parse(strings.TrimRight(raw, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse resend base url: %w", err)
		}
		api.BaseURL = base
	}

	rps := cfg.RPS
	if rps <= 0 {
		rps = 2
	}

	return &Client{
		from:    strings.TrimSpace(cfg.From),
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// Send delivers msg and returns the provider message id.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if c == nil || c.api == nil {
		return "", fmt.Errorf("email client is not initialized")
	}
	if len(msg.To) == 0 {
		return "", fmt.Errorf("email recipient is required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return "", fmt.Errorf("email subject is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for email rate limit: %w", err)
	}

	sent, err := c.api.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	if sent == nil {
		return "", fmt.Errorf("send email: empty resend response")
	}
	return sent.Id, nil
}
