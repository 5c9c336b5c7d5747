package handlers

import (
	"context"

	"legalease-notifications/internal/common/logger"
	"legalease-notifications/internal/dispatcher"
	"legalease-notifications/internal/models"
)

// DocumentSharedHandler reacts to document_shared.
type DocumentSharedHandler struct {
	base
}

func NewDocumentSharedHandler(sender Sender, log logger.Logger) *DocumentSharedHandler {
	return &DocumentSharedHandler{base: newBase("document_shared", []string{"user_id", "email"}, sender, log)}
}

func (h *DocumentSharedHandler) Handle(ctx context.Context, event models.Event, payload map[string]interface{}) error {
	if !h.validate(payload) {
		return nil
	}

	email := stringField(payload, "email")
	docName := stringField(payload, "document_name")
	if docName == "" {
		docName = "a document"
	}
	sharedByClause := ""
	if by := stringField(payload, "shared_by"); by != "" {
		sharedByClause = " by " + by
	}

	res := h.sender.Send(ctx, dispatcher.Request{
		Category: models.CategoryDocumentShared,
		UserID:   stringField(payload, "user_id"),
		Email:    email,
		Variables: map[string]interface{}{
			"username":         usernameOr(payload, email),
			"document_name":    docName,
			"shared_by_clause": sharedByClause,
		},
	})
	return dispatchErr(res)
}
