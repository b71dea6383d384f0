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

const defaultEmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

var ErrMissingRoute = errors.New("emailjs route incomplete")

// EmailJSClient forwards the template params to an EmailJS template. The
// template decides who receives the message.
type EmailJSClient struct {
	privateKey string
	endpoint   string
	httpClient *http.Client
}

func NewEmailJSClient(privateKey string, timeout time.Duration) *EmailJSClient {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &EmailJSClient{
		privateKey: strings.TrimSpace(privateKey),
		endpoint:   defaultEmailJSEndpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *EmailJSClient) Deliver(ctx context.Context, route intake.Route, payload intake.Payload) error {
	if strings.TrimSpace(route.ServiceID) == "" || strings.TrimSpace(route.TemplateID) == "" || strings.TrimSpace(route.PublicKey) == "" {
		return ErrMissingRoute
	}

	body := emailJSSendRequest{
		ServiceID:      route.ServiceID,
		TemplateID:     route.TemplateID,
		UserID:         route.PublicKey,
		AccessToken:    c.privateKey,
		TemplateParams: payload.TemplateParams(),
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("emailjs marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("emailjs create request: %w", err)
	}
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("emailjs send failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(text)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type emailJSSendRequest struct {
	ServiceID      string                 `json:"service_id"`
	TemplateID     string                 `json:"template_id"`
	UserID         string                 `json:"user_id"`
	AccessToken    string                 `json:"accessToken,omitempty"`
	TemplateParams map[string]interface{} `json:"template_params"`
}
