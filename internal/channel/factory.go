package channel

import (
	"context"
	"fmt"

	"legalease-notifications/internal/common/config"
	"legalease-notifications/internal/common/logger"
)

// NewEmailSender builds the configured email transport.
func NewEmailSender(ctx context.Context, cfg *config.Config, log logger.Logger) (EmailSender, error) {
	switch cfg.Notifications.Email.Provider {
	case "ses":
		return NewSESEmailSender(ctx, cfg, log)
	case "smtp":
		return NewSMTPEmailSender(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Notifications.Email.Provider)
	}
}
