package dispatcher

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalease-notifications/internal/channel"
	"legalease-notifications/internal/common/config"
	"legalease-notifications/internal/common/logger"
	"legalease-notifications/internal/models"
	"legalease-notifications/internal/store"
)

type fakeSMSSender struct {
	mu       sync.Mutex
	messages []string
	fail     bool
}

func (f *fakeSMSSender) Send(ctx context.Context, phoneNumber, message string) channel.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, phoneNumber+" "+message)
	if f.fail {
		return channel.Result{Success: false, Message: "sns publish: opted out"}
	}
	return channel.Result{Success: true, Message: "sms sent to " + phoneNumber}
}

func (f *fakeSMSSender) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

func smsConfig() *config.Config {
	cfg := testConfig()
	cfg.Notifications.SMS.Enabled = true
	cfg.Notifications.SMS.PriorityThreshold = "HIGH"
	return cfg
}

func newSMSDispatcher(t *testing.T, cfg *config.Config, email channel.EmailSender, sms channel.SMSSender) (*Dispatcher, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	stores := Stores{
		Records:     mem,
		Types:       mem,
		Templates:   mem,
		Preferences: mem.Preferences(),
	}
	return New(cfg, stores, email, logger.NewTestLogger(t), WithSMS(sms)), mem
}

func optIntoSMS(mem *store.Memory, userID, email string) {
	prefs := models.DefaultPreferences(userID, email)
	prefs.SMSNotifications = true
	prefs.SMSUrgentOnly = false
	mem.SetPreference(prefs)
}

func TestSMSSentForHighPriorityWithOptIn(t *testing.T) {
	sms := &fakeSMSSender{}
	d, mem := newSMSDispatcher(t, smsConfig(), &fakeEmailSender{}, sms)
	optIntoSMS(mem, "user-1", "a@example.com")

	res := d.Send(context.Background(), Request{
		Category:    models.CategoryHearingReminder,
		UserID:      "user-1",
		Email:       "a@example.com",
		PhoneNumber: "+15551234567",
	})

	require.True(t, res.Success, res.Message)
	require.Len(t, sms.sent(), 1)
	assert.Contains(t, sms.sent()[0], "+15551234567")
}

func TestSMSSkippedBelowPriorityThreshold(t *testing.T) {
	sms := &fakeSMSSender{}
	d, mem := newSMSDispatcher(t, smsConfig(), &fakeEmailSender{}, sms)
	optIntoSMS(mem, "user-2", "b@example.com")

	res := d.Send(context.Background(), Request{
		Category:    models.CategoryWelcomeEmail,
		UserID:      "user-2",
		Email:       "b@example.com",
		PhoneNumber: "+15551234567",
	})

	require.True(t, res.Success)
	assert.Empty(t, sms.sent())
}

func TestSMSUrgentOnlyBlocksHighPriority(t *testing.T) {
	sms := &fakeSMSSender{}
	d, mem := newSMSDispatcher(t, smsConfig(), &fakeEmailSender{}, sms)

	prefs := models.DefaultPreferences("user-3", "c@example.com")
	prefs.SMSNotifications = true
	prefs.SMSUrgentOnly = true
	mem.SetPreference(prefs)

	res := d.Send(context.Background(), Request{
		Category:    models.CategoryHearingReminder,
		UserID:      "user-3",
		Email:       "c@example.com",
		PhoneNumber: "+15551234567",
	})

	require.True(t, res.Success)
	assert.Empty(t, sms.sent())
}

func TestSMSRequiresPhoneNumber(t *testing.T) {
	sms := &fakeSMSSender{}
	d, mem := newSMSDispatcher(t, smsConfig(), &fakeEmailSender{}, sms)
	optIntoSMS(mem, "user-4", "d@example.com")

	res := d.Send(context.Background(), Request{
		Category: models.CategoryHearingReminder,
		UserID:   "user-4",
		Email:    "d@example.com",
	})

	require.True(t, res.Success)
	assert.Empty(t, sms.sent())
}

func TestSMSDefaultPreferencesStayQuiet(t *testing.T) {
	sms := &fakeSMSSender{}
	d, _ := newSMSDispatcher(t, smsConfig(), &fakeEmailSender{}, sms)

	res := d.Send(context.Background(), Request{
		Category:    models.CategoryHearingReminder,
		UserID:      "user-5",
		Email:       "e@example.com",
		PhoneNumber: "+15551234567",
	})

	require.True(t, res.Success)
	assert.Empty(t, sms.sent(), "SMS defaults off for new users")
}

func TestSMSRescuesFailedEmail(t *testing.T) {
	sms := &fakeSMSSender{}
	d, mem := newSMSDispatcher(t, smsConfig(), &fakeEmailSender{fail: true}, sms)
	optIntoSMS(mem, "user-6", "f@example.com")

	res := d.Send(context.Background(), Request{
		Category:    models.CategoryHearingReminder,
		UserID:      "user-6",
		Email:       "f@example.com",
		PhoneNumber: "+15551234567",
	})

	require.True(t, res.Success, "SMS delivery counts when email fails")
	require.Len(t, sms.sent(), 1)

	n, err := mem.Get(context.Background(), res.NotificationID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, n.Status)
}

func TestSMSDeliversWhenEmailChannelDisabled(t *testing.T) {
	cfg := smsConfig()
	cfg.Notifications.Email.Enabled = false
	sms := &fakeSMSSender{}
	email := &fakeEmailSender{}
	d, mem := newSMSDispatcher(t, cfg, email, sms)
	optIntoSMS(mem, "user-8", "h@example.com")

	res := d.Send(context.Background(), Request{
		Category:    models.CategoryHearingReminder,
		UserID:      "user-8",
		Email:       "h@example.com",
		PhoneNumber: "+15551234567",
	})

	require.True(t, res.Success, res.Message)
	assert.Empty(t, email.sent())
	require.Len(t, sms.sent(), 1)

	n, err := mem.Get(context.Background(), res.NotificationID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, n.Status)
}

func TestSMSFailureDoesNotMaskEmailSuccess(t *testing.T) {
	sms := &fakeSMSSender{fail: true}
	d, mem := newSMSDispatcher(t, smsConfig(), &fakeEmailSender{}, sms)
	optIntoSMS(mem, "user-7", "g@example.com")

	res := d.Send(context.Background(), Request{
		Category:    models.CategoryHearingReminder,
		UserID:      "user-7",
		Email:       "g@example.com",
		PhoneNumber: "+15551234567",
	})

	require.True(t, res.Success)
	n, err := mem.Get(context.Background(), res.NotificationID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, n.Status)
}
