// internal/models/notification.go
package models

import "time"

// NotificationStatus is the delivery lifecycle state of a record.
// PENDING may move to SENT or FAILED; FAILED may be retried back to SENT or
// FAILED. DELIVERED and BOUNCED are terminal and set only by out-of-band
// delivery receipts.
type NotificationStatus string

const (
	StatusPending   NotificationStatus = "PENDING"
	StatusSent      NotificationStatus = "SENT"
	StatusDelivered NotificationStatus = "DELIVERED"
	StatusFailed    NotificationStatus = "FAILED"
	StatusBounced   NotificationStatus = "BOUNCED"
)

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s NotificationStatus) bool {
	switch s {
	case StatusPending, StatusSent, StatusDelivered, StatusFailed, StatusBounced:
		return true
	}
	return false
}

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "LOW"
	PriorityNormal NotificationPriority = "NORMAL"
	PriorityHigh   NotificationPriority = "HIGH"
	PriorityUrgent NotificationPriority = "URGENT"
)

// ChannelKind is the transport class of a notification type.
type ChannelKind string

const (
	ChannelEmail ChannelKind = "EMAIL"
	ChannelSMS   ChannelKind = "SMS"
	ChannelPush  ChannelKind = "PUSH"
	ChannelInApp ChannelKind = "IN_APP"
)

// NotificationType is a named category with channel defaults, created lazily
// on first use and uniquely keyed by name.
type NotificationType struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Kind            ChannelKind `json:"kind"`
	TemplateSubject string      `json:"templateSubject"`
	TemplateBody    string      `json:"templateBody"`
	IsActive        bool        `json:"isActive"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// TemplateType tags a template for lookup; at most one active template per type.
type TemplateType string

const (
	TemplateWelcome             TemplateType = "WELCOME"
	TemplateVerification        TemplateType = "VERIFICATION"
	TemplatePasswordReset       TemplateType = "PASSWORD_RESET"
	TemplateHearingReminder     TemplateType = "HEARING_REMINDER"
	TemplateCaseUpdate          TemplateType = "CASE_UPDATE"
	TemplateDocumentShared      TemplateType = "DOCUMENT_SHARED"
	TemplatePaymentConfirmation TemplateType = "PAYMENT_CONFIRMATION"
)

type NotificationTemplate struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	Type     TemplateType `json:"type"`
	Subject  string       `json:"subject"`
	HTMLBody string       `json:"htmlBody"`
	TextBody string       `json:"textBody"`
	// Variables documents the expected placeholder names; it is not enforced
	// at render time.
	Variables map[string]string `json:"variables,omitempty"`
	IsActive  bool              `json:"isActive"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Notification is the durable record of one dispatch attempt-set. Retries
// mutate the same record; a new record is never created per retry.
type Notification struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`

	TypeID     int64  `json:"typeId"`
	TemplateID *int64 `json:"templateId,omitempty"` // nullable: template may be deleted later

	Subject     string `json:"subject"`
	Message     string `json:"message"`
	HTMLMessage string `json:"htmlMessage,omitempty"`

	Status   NotificationStatus   `json:"status"`
	Priority NotificationPriority `json:"priority"`

	SentAt      *time.Time `json:"sentAt,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	ReadAt      *time.Time `json:"readAt,omitempty"`

	ErrorMessage string `json:"errorMessage,omitempty"`
	RetryCount   int    `json:"retryCount"`
	MaxRetries   int    `json:"maxRetries"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CanRetry reports whether a manual retry is permitted.
func (n *Notification) CanRetry() bool {
	return n.Status == StatusFailed && n.RetryCount < n.MaxRetries
}

// NotificationPreference holds per-user opt-in flags, one row per user.
type NotificationPreference struct {
	ID     int64  `json:"id"`
	UserID string `json:"userId"`
	Email  string `json:"email"`

	EmailNotifications    bool `json:"emailNotifications"`
	WelcomeEmails         bool `json:"welcomeEmails"`
	HearingReminders      bool `json:"hearingReminders"`
	CaseUpdates           bool `json:"caseUpdates"`
	DocumentNotifications bool `json:"documentNotifications"`
	PaymentNotifications  bool `json:"paymentNotifications"`

	SMSNotifications bool `json:"smsNotifications"`
	SMSUrgentOnly    bool `json:"smsUrgentOnly"`

	PushNotifications bool `json:"pushNotifications"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultPreferences returns the all-opt-in row created on first reference to
// an unknown user. SMS is the only channel that defaults off.
func DefaultPreferences(userID, email string) *NotificationPreference {
	return &NotificationPreference{
		UserID:                userID,
		Email:                 email,
		EmailNotifications:    true,
		WelcomeEmails:         true,
		HearingReminders:      true,
		CaseUpdates:           true,
		DocumentNotifications: true,
		PaymentNotifications:  true,
		SMSNotifications:      false,
		SMSUrgentOnly:         true,
		PushNotifications:     true,
	}
}
