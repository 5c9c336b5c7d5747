package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"legalease-notifications/internal/common/config"
	"legalease-notifications/internal/common/logger"
	"legalease-notifications/internal/dispatcher"
	"legalease-notifications/internal/models"
)

const verificationExpiryHours = 24

// SignupHandler reacts to user_signed_up: a welcome email plus an email
// verification message carrying a fresh token.
type SignupHandler struct {
	base
	baseURL string
}

func NewSignupHandler(sender Sender, cfg *config.Config, log logger.Logger) *SignupHandler {
	return &SignupHandler{
		base:    newBase("user_signed_up", []string{"user_id", "email"}, sender, log),
		baseURL: cfg.Notifications.FrontendBaseURL,
	}
}

func (h *SignupHandler) Handle(ctx context.Context, event models.Event, payload map[string]interface{}) error {
	if !h.validate(payload) {
		return nil
	}

	userID := stringField(payload, "user_id")
	email := stringField(payload, "email")
	username := usernameOr(payload, email)
	userType := stringField(payload, "user_type")
	if userType == "" {
		userType = "User"
	}

	welcome := h.sender.Send(ctx, dispatcher.Request{
		Category: models.CategoryWelcomeEmail,
		UserID:   userID,
		Email:    email,
		Variables: map[string]interface{}{
			"username":  username,
			"user_type": userType,
		},
	})
	h.logResult("welcome email", welcome)

	token := uuid.New().String()
	verification := h.sender.Send(ctx, dispatcher.Request{
		Category: models.CategoryEmailVerification,
		UserID:   userID,
		Email:    email,
		Variables: map[string]interface{}{
			"username":           username,
			"verification_token": token,
			"verification_url":   fmt.Sprintf("%s/verify-email?token=%s", h.baseURL, token),
			"expiry_hours":       verificationExpiryHours,
		},
		Metadata: map[string]interface{}{"verification_token": token},
	})
	h.logResult("verification email", verification)

	if err := dispatchErr(welcome); err != nil {
		return err
	}
	return dispatchErr(verification)
}

func (h *SignupHandler) logResult(kind string, res dispatcher.Result) {
	fields := map[string]interface{}{
		"notificationId": res.NotificationID,
		"message":        res.Message,
	}
	if res.Success {
		h.logger.Info(kind+" dispatched", fields)
	} else {
		h.logger.Warn(kind+" not sent", fields)
	}
}
