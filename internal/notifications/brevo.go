package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hhsystems1/Intakeform/internal/intake"
)

const defaultBrevoEndpoint = "https://api.brevo.com/v3/smtp/email"

var ErrMissingRecipient = errors.New("missing recipient email")

// BrevoClient delivers intake submissions as transactional HTML emails.
type BrevoClient struct {
	apiKey      string
	senderEmail string
	senderName  string
	recipient   string
	sandbox     bool
	endpoint    string
	httpClient  *http.Client
}

func NewBrevoClient(apiKey, senderEmail, senderName, recipient string, sandbox bool, timeout time.Duration) *BrevoClient {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(senderEmail) == "" {
		return nil
	}
	if strings.TrimSpace(senderName) == "" {
		senderName = senderEmail
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &BrevoClient{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		recipient:   strings.TrimSpace(recipient),
		sandbox:     sandbox,
		endpoint:    defaultBrevoEndpoint,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Deliver sends the intake summary to the configured recipient. The routing
// identifiers are EmailJS specific and ignored here.
func (c *BrevoClient) Deliver(ctx context.Context, _ intake.Route, payload intake.Payload) error {
	if c == nil {
		return errors.New("brevo client is nil")
	}
	if c.recipient == "" {
		return ErrMissingRecipient
	}
	htmlBody, err := buildIntakeNotificationHTML(payload)
	if err != nil {
		return fmt.Errorf("brevo render notification: %w", err)
	}
	subject := fmt.Sprintf("New website intake - %s", payload.CompanyName)
	_, err = c.sendHTML(ctx, c.recipient, c.senderName, subject, htmlBody, payload.Email)
	return err
}

// SendConfirmation tells the submitter their intake was received.
func (c *BrevoClient) SendConfirmation(ctx context.Context, payload intake.Payload) (string, error) {
	if c == nil {
		return "", errors.New("brevo client is nil")
	}
	htmlBody, err := buildIntakeConfirmationHTML(payload)
	if err != nil {
		return "", err
	}
	return c.sendHTML(ctx, payload.Email, payload.ContactName, "We received your website project intake", htmlBody, "")
}

func (c *BrevoClient) sendHTML(ctx context.Context, toEmail, toName, subject, htmlBody, replyTo string) (string, error) {
	if strings.TrimSpace(toEmail) == "" {
		return "", ErrMissingRecipient
	}
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("missing subject")
	}
	if strings.TrimSpace(htmlBody) == "" {
		return "", errors.New("missing html body")
	}

	payload := brevoSendRequest{
		Sender: brevoSender{
			Name:  c.senderName,
			Email: c.senderEmail,
		},
		To: []brevoRecipient{
			{
				Email: toEmail,
				Name:  toName,
			},
		},
		Subject:     subject,
		HtmlContent: htmlBody,
	}
	if strings.TrimSpace(replyTo) != "" {
		payload.ReplyTo = &brevoRecipient{Email: replyTo}
	}
	if c.sandbox {
		payload.Headers = map[string]string{
			"X-Sib-Sandbox": "drop",
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("brevo marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("brevo create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("brevo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("brevo send failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out brevoSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("brevo decode response: %w", err)
	}
	if strings.TrimSpace(out.MessageID) == "" {
		return "", errors.New("brevo response missing messageId")
	}
	return out.MessageID, nil
}

type brevoSendRequest struct {
	Sender      brevoSender       `json:"sender"`
	To          []brevoRecipient  `json:"to"`
	ReplyTo     *brevoRecipient   `json:"replyTo,omitempty"`
	Subject     string            `json:"subject"`
	HtmlContent string            `json:"htmlContent,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

type brevoSender struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type brevoRecipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoSendResponse struct {
	MessageID string `json:"messageId"`
}
