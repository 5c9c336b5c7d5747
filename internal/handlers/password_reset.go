package handlers

import (
	"context"
	"fmt"

	"legalease-notifications/internal/common/config"
	"legalease-notifications/internal/common/logger"
	"legalease-notifications/internal/dispatcher"
	"legalease-notifications/internal/models"
)

// PasswordResetHandler reacts to password_reset_requested. The reset token is
// produced upstream and carried in the event.
type PasswordResetHandler struct {
	base
	baseURL string
}

func NewPasswordResetHandler(sender Sender, cfg *config.Config, log logger.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{
		base:    newBase("password_reset_requested", []string{"user_id", "email", "reset_token"}, sender, log),
		baseURL: cfg.Notifications.FrontendBaseURL,
	}
}

func (h *PasswordResetHandler) Handle(ctx context.Context, event models.Event, payload map[string]interface{}) error {
	if !h.validate(payload) {
		return nil
	}

	email := stringField(payload, "email")
	token := stringField(payload, "reset_token")

	res := h.sender.Send(ctx, dispatcher.Request{
		Category: models.CategoryPasswordReset,
		UserID:   stringField(payload, "user_id"),
		Email:    email,
		Variables: map[string]interface{}{
			"username":  usernameOr(payload, email),
			"reset_url": fmt.Sprintf("%s/reset-password?token=%s", h.baseURL, token),
		},
	})
	if !res.Success {
		h.logger.Warn("password reset email not sent", map[string]interface{}{
			"notificationId": res.NotificationID,
			"message":        res.Message,
		})
	}
	return dispatchErr(res)
}
