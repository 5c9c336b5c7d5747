package dispatcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalease-notifications/internal/channel"
	"legalease-notifications/internal/common/config"
	"legalease-notifications/internal/common/logger"
	"legalease-notifications/internal/models"
	"legalease-notifications/internal/store"
)

type fakeEmailSender struct {
	mu       sync.Mutex
	messages []channel.EmailMessage
	fail     bool
}

func (f *fakeEmailSender) Send(ctx context.Context, msg channel.EmailMessage) channel.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	if f.fail {
		return channel.Result{Success: false, Message: "smtp send: connection refused"}
	}
	return channel.Result{Success: true, Message: "email sent to " + msg.To}
}

func (f *fakeEmailSender) sent() []channel.EmailMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]channel.EmailMessage(nil), f.messages...)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Notifications.Email.Enabled = true
	cfg.Notifications.Email.Provider = "smtp"
	cfg.Notifications.VerificationDelivery = config.VerificationSend
	cfg.Notifications.DispatchTimeout = 5000
	cfg.Notifications.MaxRetries = 3
	cfg.Notifications.PlatformName = "Legal Ease"
	cfg.Notifications.SupportEmail = "support@legalease.com"
	cfg.Notifications.FrontendBaseURL = "http://localhost:3000"
	cfg.Notifications.LoginURL = "http://localhost:3000/login"
	return cfg
}

func newTestDispatcher(t *testing.T, cfg *config.Config, email channel.EmailSender) (*Dispatcher, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	stores := Stores{
		Records:     mem,
		Types:       mem,
		Templates:   mem,
		Preferences: mem.Preferences(),
	}
	return New(cfg, stores, email, logger.NewTestLogger(t)), mem
}

func TestSendCreatesSentRecord(t *testing.T) {
	sender := &fakeEmailSender{}
	d, mem := newTestDispatcher(t, testConfig(), sender)

	res := d.Send(context.Background(), Request{
		Category:  models.CategoryWelcomeEmail,
		UserID:    "user-1",
		Email:     "alice@example.com",
		Variables: map[string]interface{}{"username": "alice", "user_type": "Petitioner"},
	})

	require.True(t, res.Success, res.Message)
	require.NotEmpty(t, res.NotificationID)

	n, err := mem.Get(context.Background(), res.NotificationID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, n.Status)
	assert.NotNil(t, n.SentAt)
	assert.Equal(t, models.PriorityNormal, n.Priority)
	assert.Contains(t, n.Subject, "Legal Ease")
	assert.Contains(t, n.HTMLMessage, "alice")
	assert.Empty(t, n.ErrorMessage)

	messages := sender.sent()
	require.Len(t, messages, 1)
	assert.Equal(t, "alice@example.com", messages[0].To)
	assert.Contains(t, messages[0].HTMLBody, "alice")
}

func TestSendOptedOutWritesNoRecord(t *testing.T) {
	sender := &fakeEmailSender{}
	d, mem := newTestDispatcher(t, testConfig(), sender)

	prefs := models.DefaultPreferences("user-2", "bob@example.com")
	prefs.WelcomeEmails = false
	mem.SetPreference(prefs)

	res := d.Send(context.Background(), Request{
		Category: models.CategoryWelcomeEmail,
		UserID:   "user-2",
		Email:    "bob@example.com",
	})

	assert.False(t, res.Success)
	assert.True(t, res.Skipped)
	assert.Empty(t, res.NotificationID)
	assert.Empty(t, sender.sent())

	records, err := mem.ListByUser(context.Background(), "user-2", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSendVerificationBypassesOptOut(t *testing.T) {
	sender := &fakeEmailSender{}
	d, mem := newTestDispatcher(t, testConfig(), sender)

	prefs := models.DefaultPreferences("user-3", "c@example.com")
	prefs.EmailNotifications = false
	prefs.WelcomeEmails = false
	mem.SetPreference(prefs)

	res := d.Send(context.Background(), Request{
		Category: models.CategoryEmailVerification,
		UserID:   "user-3",
		Email:    "c@example.com",
		Variables: map[string]interface{}{
			"username":         "carol",
			"verification_url": "http://localhost:3000/verify-email?token=tok",
		},
	})

	require.True(t, res.Success, res.Message)
	n, err := mem.Get(context.Background(), res.NotificationID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, n.Status)
	assert.Equal(t, models.PriorityHigh, n.Priority)
}

func TestSendVerificationRecordOnlySkipsTransport(t *testing.T) {
	cfg := testConfig()
	cfg.Notifications.VerificationDelivery = config.VerificationRecordOnly
	sender := &fakeEmailSender{}
	d, mem := newTestDispatcher(t, cfg, sender)

	res := d.Send(context.Background(), Request{
		Category: models.CategoryEmailVerification,
		UserID:   "user-4",
		Email:    "d@example.com",
	})

	require.True(t, res.Success)
	assert.Empty(t, sender.sent())

	n, err := mem.Get(context.Background(), res.NotificationID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, n.Status)
}

func TestSendEmailDisabledSkipsWithoutRecord(t *testing.T) {
	cfg := testConfig()
	cfg.Notifications.Email.Enabled = false
	sender := &fakeEmailSender{}
	d, mem := newTestDispatcher(t, cfg, sender)

	res := d.Send(context.Background(), Request{
		Category: models.CategoryWelcomeEmail,
		UserID:   "user-10",
		Email:    "j@example.com",
	})

	assert.False(t, res.Success)
	assert.True(t, res.Skipped)
	assert.Empty(t, res.NotificationID)
	assert.Empty(t, sender.sent())

	records, err := mem.ListByUser(context.Background(), "user-10", 10)
	require.NoError(t, err)
	assert.Empty(t, records, "a disabled channel must not accumulate FAILED records")
}

func TestSendVerificationRecordOnlyIgnoresDisabledEmail(t *testing.T) {
	cfg := testConfig()
	cfg.Notifications.Email.Enabled = false
	cfg.Notifications.VerificationDelivery = config.VerificationRecordOnly
	sender := &fakeEmailSender{}
	d, mem := newTestDispatcher(t, cfg, sender)

	res := d.Send(context.Background(), Request{
		Category: models.CategoryEmailVerification,
		UserID:   "user-11",
		Email:    "k@example.com",
	})

	require.True(t, res.Success)
	n, err := mem.Get(context.Background(), res.NotificationID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, n.Status)
}

func TestSendFailureMarksRecordFailed(t *testing.T) {
	sender := &fakeEmailSender{fail: true}
	d, mem := newTestDispatcher(t, testConfig(), sender)

	res := d.Send(context.Background(), Request{
		Category: models.CategoryCaseUpdate,
		UserID:   "user-5",
		Email:    "e@example.com",
	})

	assert.False(t, res.Success)
	require.NotEmpty(t, res.NotificationID)

	n, err := mem.Get(context.Background(), res.NotificationID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, n.Status)
	assert.Contains(t, n.ErrorMessage, "connection refused")
	assert.Equal(t, 0, n.RetryCount)
}

func TestRetryExhaustion(t *testing.T) {
	sender := &fakeEmailSender{fail: true}
	d, mem := newTestDispatcher(t, testConfig(), sender)

	res := d.Send(context.Background(), Request{
		Category: models.CategoryWelcomeEmail,
		UserID:   "user-6",
		Email:    "f@example.com",
	})
	require.False(t, res.Success)
	id := res.NotificationID

	for i := 1; i <= 3; i++ {
		retry := d.Retry(context.Background(), id)
		assert.False(t, retry.Success, "retry %d should fail", i)
		n, err := mem.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, i, n.RetryCount)
		assert.Equal(t, models.StatusFailed, n.Status)
	}

	// Attempts are exhausted; even a now-healthy transport is not consulted.
	sender.fail = false
	rejected := d.Retry(context.Background(), id)
	assert.False(t, rejected.Success)
	assert.Empty(t, rejected.NotificationID)
	assert.Contains(t, rejected.Message, "not permitted")

	n, err := mem.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 3, n.RetryCount)
}

func TestRetrySucceedsAfterTransportRecovers(t *testing.T) {
	sender := &fakeEmailSender{fail: true}
	d, mem := newTestDispatcher(t, testConfig(), sender)

	res := d.Send(context.Background(), Request{
		Category: models.CategoryPaymentConfirmation,
		UserID:   "user-7",
		Email:    "g@example.com",
	})
	require.False(t, res.Success)

	sender.fail = false
	retry := d.Retry(context.Background(), res.NotificationID)
	require.True(t, retry.Success, retry.Message)

	n, err := mem.Get(context.Background(), res.NotificationID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, n.Status)
	assert.Equal(t, 1, n.RetryCount)
	assert.NotNil(t, n.SentAt)
}

func TestRetryOfSentRecordRejected(t *testing.T) {
	sender := &fakeEmailSender{}
	d, _ := newTestDispatcher(t, testConfig(), sender)

	res := d.Send(context.Background(), Request{
		Category: models.CategoryWelcomeEmail,
		UserID:   "user-8",
		Email:    "h@example.com",
	})
	require.True(t, res.Success)

	retry := d.Retry(context.Background(), res.NotificationID)
	assert.False(t, retry.Success)
	assert.Contains(t, retry.Message, "not permitted")
}

func TestRetryUnknownRecord(t *testing.T) {
	sender := &fakeEmailSender{}
	d, _ := newTestDispatcher(t, testConfig(), sender)

	retry := d.Retry(context.Background(), "no-such-id")
	assert.False(t, retry.Success)
	assert.Contains(t, retry.Message, "not found")
}

func TestSendRendersCurrentYear(t *testing.T) {
	sender := &fakeEmailSender{}
	cfg := testConfig()
	d, mem := newTestDispatcher(t, cfg, sender)
	d.now = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }

	res := d.Send(context.Background(), Request{
		Category: models.CategoryWelcomeEmail,
		UserID:   "user-9",
		Email:    "i@example.com",
	})
	require.True(t, res.Success)

	n, err := mem.Get(context.Background(), res.NotificationID)
	require.NoError(t, err)
	assert.Contains(t, n.HTMLMessage, "2026")
}
