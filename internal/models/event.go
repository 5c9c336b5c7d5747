// internal/models/event.go
package models

// Event is the immutable envelope read from the event log: a topic name plus
// opaque payload bytes, nominally a UTF-8 JSON object.
type Event struct {
	Topic   string `json:"topic"`
	Payload []byte `json:"payload"`
	// ID is the log entry identifier (stream entry ID), used for commits.
	ID string `json:"id"`
}

// Category names a notification category; it doubles as the NotificationType
// name in the store.
type Category string

const (
	CategoryWelcomeEmail        Category = "welcome_email"
	CategoryEmailVerification   Category = "email_verification"
	CategoryPasswordReset       Category = "password_reset"
	CategoryHearingReminder     Category = "hearing_reminder"
	CategoryCaseUpdate          Category = "case_update"
	CategoryDocumentShared      Category = "document_shared"
	CategoryPaymentConfirmation Category = "payment_confirmation"
)

// TemplateTypeFor maps a category to the template tag used for lookup.
func TemplateTypeFor(c Category) TemplateType {
	switch c {
	case CategoryWelcomeEmail:
		return TemplateWelcome
	case CategoryEmailVerification:
		return TemplateVerification
	case CategoryPasswordReset:
		return TemplatePasswordReset
	case CategoryHearingReminder:
		return TemplateHearingReminder
	case CategoryCaseUpdate:
		return TemplateCaseUpdate
	case CategoryDocumentShared:
		return TemplateDocumentShared
	case CategoryPaymentConfirmation:
		return TemplatePaymentConfirmation
	}
	return TemplateWelcome
}

// PriorityFor returns the default priority for a category.
func PriorityFor(c Category) NotificationPriority {
	switch c {
	case CategoryEmailVerification, CategoryPasswordReset, CategoryHearingReminder:
		return PriorityHigh
	default:
		return PriorityNormal
	}
}
