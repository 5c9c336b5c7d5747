package handlers

import (
	"context"
	"fmt"

	"legalease-notifications/internal/common/logger"
	"legalease-notifications/internal/dispatcher"
	"legalease-notifications/internal/models"
)

// PaymentCompletedHandler reacts to payment_completed with a receipt email.
type PaymentCompletedHandler struct {
	base
}

func NewPaymentCompletedHandler(sender Sender, log logger.Logger) *PaymentCompletedHandler {
	return &PaymentCompletedHandler{base: newBase("payment_completed", []string{"user_id", "email"}, sender, log)}
}

func (h *PaymentCompletedHandler) Handle(ctx context.Context, event models.Event, payload map[string]interface{}) error {
	if !h.validate(payload) {
		return nil
	}

	email := stringField(payload, "email")
	referenceClause := ""
	if ref := stringField(payload, "payment_reference"); ref != "" {
		referenceClause = fmt.Sprintf(" (ref %s)", ref)
	}

	res := h.sender.Send(ctx, dispatcher.Request{
		Category: models.CategoryPaymentConfirmation,
		UserID:   stringField(payload, "user_id"),
		Email:    email,
		Variables: map[string]interface{}{
			"username":         usernameOr(payload, email),
			"amount":           stringField(payload, "amount"),
			"reference_clause": referenceClause,
		},
	})
	return dispatchErr(res)
}
