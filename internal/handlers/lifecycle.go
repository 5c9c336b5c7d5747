package handlers

import (
	"context"

	"legalease-notifications/internal/common/logger"
	"legalease-notifications/internal/models"
)

// UserVerifiedHandler records email verification completions. No notification
// is dispatched for this topic.
type UserVerifiedHandler struct {
	base
}

func NewUserVerifiedHandler(log logger.Logger) *UserVerifiedHandler {
	return &UserVerifiedHandler{base: newBase("user_verified", []string{"user_id", "email"}, nil, log)}
}

func (h *UserVerifiedHandler) Handle(ctx context.Context, event models.Event, payload map[string]interface{}) error {
	if !h.validate(payload) {
		return nil
	}
	h.logger.Info("user verified email", map[string]interface{}{
		"userId": stringField(payload, "user_id"),
	})
	return nil
}

// UserLoggedInHandler records logins. No payload fields are required and no
// notification is dispatched.
type UserLoggedInHandler struct {
	base
}

func NewUserLoggedInHandler(log logger.Logger) *UserLoggedInHandler {
	return &UserLoggedInHandler{base: newBase("user_logged_in", nil, nil, log)}
}

func (h *UserLoggedInHandler) Handle(ctx context.Context, event models.Event, payload map[string]interface{}) error {
	h.logger.Debug("user logged in", map[string]interface{}{
		"userId": stringField(payload, "user_id"),
	})
	return nil
}
