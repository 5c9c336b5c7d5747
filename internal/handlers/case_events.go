package handlers

import (
	"context"

	"legalease-notifications/internal/common/logger"
	"legalease-notifications/internal/dispatcher"
	"legalease-notifications/internal/models"
)

// HearingScheduledHandler reacts to hearing_scheduled with a high priority
// hearing reminder.
type HearingScheduledHandler struct {
	base
}

func NewHearingScheduledHandler(sender Sender, log logger.Logger) *HearingScheduledHandler {
	return &HearingScheduledHandler{base: newBase("hearing_scheduled", []string{"user_id", "email"}, sender, log)}
}

func (h *HearingScheduledHandler) Handle(ctx context.Context, event models.Event, payload map[string]interface{}) error {
	if !h.validate(payload) {
		return nil
	}

	email := stringField(payload, "email")
	res := h.sender.Send(ctx, dispatcher.Request{
		Category:    models.CategoryHearingReminder,
		UserID:      stringField(payload, "user_id"),
		Email:       email,
		PhoneNumber: stringField(payload, "phone_number"),
		Variables: map[string]interface{}{
			"username":     usernameOr(payload, email),
			"case_number":  stringField(payload, "case_number"),
			"hearing_date": stringField(payload, "hearing_date"),
		},
	})
	return dispatchErr(res)
}

// CaseUpdatedHandler reacts to case_updated with a case update notice.
type CaseUpdatedHandler struct {
	base
}

func NewCaseUpdatedHandler(sender Sender, log logger.Logger) *CaseUpdatedHandler {
	return &CaseUpdatedHandler{base: newBase("case_updated", []string{"user_id", "email"}, sender, log)}
}

func (h *CaseUpdatedHandler) Handle(ctx context.Context, event models.Event, payload map[string]interface{}) error {
	if !h.validate(payload) {
		return nil
	}

	email := stringField(payload, "email")
	summary := stringField(payload, "update_summary")
	if summary == "" {
		summary = "Your case has been updated."
	}

	res := h.sender.Send(ctx, dispatcher.Request{
		Category: models.CategoryCaseUpdate,
		UserID:   stringField(payload, "user_id"),
		Email:    email,
		Variables: map[string]interface{}{
			"username":       usernameOr(payload, email),
			"case_number":    stringField(payload, "case_number"),
			"update_summary": summary,
		},
	})
	return dispatchErr(res)
}
