package notifications

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hhsystems1/Intakeform/internal/config"
	"github.com/hhsystems1/Intakeform/internal/intake"
)

const (
	ProviderEmailJS = "emailjs"
	ProviderBrevo   = "brevo"
	ProviderLog     = "log"
)

// FromConfig builds the deliverer selected by DELIVERY_PROVIDER.
func FromConfig(cfg *config.Config, log *slog.Logger) (intake.Deliverer, error) {
	timeout := cfg.DeliveryTimeout()
	switch strings.ToLower(strings.TrimSpace(cfg.DeliveryProvider)) {
	case ProviderEmailJS:
		return NewEmailJSClient(cfg.EmailJSPrivateKey, timeout), nil
	case ProviderBrevo:
		client := NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.IntakeRecipientEmail, cfg.BrevoSandbox, timeout)
		if client == nil {
			return nil, fmt.Errorf("brevo provider needs BREVO_API_KEY and BREVO_SENDER_EMAIL")
		}
		return client, nil
	case ProviderLog, "":
		return LogOnly{Log: log}, nil
	}
	return nil, fmt.Errorf("unknown delivery provider %q", cfg.DeliveryProvider)
}
