package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []NotificationStatus{StatusPending, StatusSent, StatusDelivered, StatusFailed, StatusBounced} {
		assert.True(t, ValidStatus(s), "%s should be valid", s)
	}
	assert.False(t, ValidStatus("RETRYING"))
	assert.False(t, ValidStatus(""))
}

func TestCanRetry(t *testing.T) {
	tests := []struct {
		name       string
		status     NotificationStatus
		retryCount int
		maxRetries int
		want       bool
	}{
		{"failed with budget left", StatusFailed, 0, 3, true},
		{"failed on last attempt", StatusFailed, 2, 3, true},
		{"failed and exhausted", StatusFailed, 3, 3, false},
		{"sent record", StatusSent, 0, 3, false},
		{"pending record", StatusPending, 0, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Notification{Status: tt.status, RetryCount: tt.retryCount, MaxRetries: tt.maxRetries}
			assert.Equal(t, tt.want, n.CanRetry())
		})
	}
}

func TestDefaultPreferencesOptIn(t *testing.T) {
	p := DefaultPreferences("user-1", "a@b.com")
	assert.True(t, p.EmailNotifications)
	assert.True(t, p.WelcomeEmails)
	assert.True(t, p.HearingReminders)
	assert.False(t, p.SMSNotifications)
	assert.True(t, p.SMSUrgentOnly)
}

func TestTemplateTypeFor(t *testing.T) {
	assert.Equal(t, TemplateWelcome, TemplateTypeFor(CategoryWelcomeEmail))
	assert.Equal(t, TemplateVerification, TemplateTypeFor(CategoryEmailVerification))
	assert.Equal(t, TemplatePasswordReset, TemplateTypeFor(CategoryPasswordReset))
	assert.Equal(t, TemplateHearingReminder, TemplateTypeFor(CategoryHearingReminder))
	assert.Equal(t, TemplateCaseUpdate, TemplateTypeFor(CategoryCaseUpdate))
	assert.Equal(t, TemplateDocumentShared, TemplateTypeFor(CategoryDocumentShared))
	assert.Equal(t, TemplatePaymentConfirmation, TemplateTypeFor(CategoryPaymentConfirmation))
}

func TestPriorityFor(t *testing.T) {
	assert.Equal(t, PriorityHigh, PriorityFor(CategoryEmailVerification))
	assert.Equal(t, PriorityHigh, PriorityFor(CategoryPasswordReset))
	assert.Equal(t, PriorityHigh, PriorityFor(CategoryHearingReminder))
	assert.Equal(t, PriorityNormal, PriorityFor(CategoryWelcomeEmail))
	assert.Equal(t, PriorityNormal, PriorityFor(CategoryCaseUpdate))
}
