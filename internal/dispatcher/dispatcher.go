// Package dispatcher turns a notification request into a durable record plus
// a delivery attempt. Every dispatch follows the same path: preference gate,
// lazy type and template resolution, render, PENDING record, transport, then
// a SENT or FAILED terminal update on the same record.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"legalease-notifications/internal/audit"
	"legalease-notifications/internal/channel"
	"legalease-notifications/internal/common/config"
	"legalease-notifications/internal/common/logger"
	"legalease-notifications/internal/common/metrics"
	"legalease-notifications/internal/common/observability"
	"legalease-notifications/internal/models"
	"legalease-notifications/internal/store"
	"legalease-notifications/internal/template"
)

// Request describes one notification to dispatch.
type Request struct {
	Category    models.Category
	UserID      string
	Email       string
	PhoneNumber string
	// Priority overrides the category default when set.
	Priority  models.NotificationPriority
	Variables map[string]interface{}
	Metadata  map[string]interface{}
}

// Result is the outcome of a dispatch or retry.
type Result struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	NotificationID string `json:"notificationId,omitempty"`
	// Skipped means a gate stopped the dispatch before any record was
	// created: the user opted out, or no enabled channel could deliver.
	// A skipped dispatch is not an error: handlers treat it as a quiet no-op.
	Skipped bool `json:"skipped,omitempty"`
}

// Auditor receives finished dispatch outcomes. Implemented by audit.Indexer.
type Auditor interface {
	Record(ctx context.Context, n *models.Notification, category models.Category)
}

// Stores bundles the persistence dependencies of a Dispatcher.
type Stores struct {
	Records     store.RecordStore
	Types       store.TypeStore
	Templates   store.TemplateStore
	Preferences store.PreferenceStore
}

type Dispatcher struct {
	cfg     *config.Config
	stores  Stores
	email   channel.EmailSender
	sms     channel.SMSSender
	obs     *observability.Observability
	auditor Auditor
	logger  logger.Logger
	now     func() time.Time
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithSMS enables the SMS channel.
func WithSMS(sms channel.SMSSender) Option {
	return func(d *Dispatcher) { d.sms = sms }
}

// WithObservability attaches the OTel metric recorder.
func WithObservability(obs *observability.Observability) Option {
	return func(d *Dispatcher) { d.obs = obs }
}

// WithAuditor attaches the dispatch outcome indexer.
func WithAuditor(a Auditor) Option {
	return func(d *Dispatcher) { d.auditor = a }
}

var _ Auditor = (*audit.Indexer)(nil)

func New(cfg *config.Config, stores Stores, email channel.EmailSender, log logger.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:    cfg,
		stores: stores,
		email:  email,
		logger: log.WithFields(map[string]interface{}{"component": "dispatcher"}),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send dispatches one notification. Errors from the transport never escape:
// they are recorded as a FAILED record and a Success=false result.
func (d *Dispatcher) Send(ctx context.Context, req Request) Result {
	start := d.now()
	res := d.send(ctx, req)

	elapsed := time.Since(start)
	metrics.DispatchDuration.WithLabelValues(string(req.Category)).Observe(elapsed.Seconds())
	if d.obs != nil {
		d.obs.RecordDispatchDuration(ctx, elapsed, string(req.Category))
	}
	metrics.Dispatches.WithLabelValues(string(req.Category), dispatchOutcome(res)).Inc()
	return res
}

func (d *Dispatcher) send(ctx context.Context, req Request) Result {
	prefs, err := d.stores.Preferences.GetOrCreate(ctx, req.UserID, req.Email)
	if err != nil {
		d.logger.Error("load preferences", map[string]interface{}{
			"error":  err,
			"userId": req.UserID,
		})
		return Result{Success: false, Message: fmt.Sprintf("load preferences: %v", err)}
	}

	if !allowed(req.Category, prefs) {
		d.logger.Info("dispatch skipped, user opted out", map[string]interface{}{
			"userId":   req.UserID,
			"category": string(req.Category),
		})
		return Result{Success: false, Skipped: true, Message: fmt.Sprintf("user has disabled %s notifications", req.Category)}
	}

	tmpl, err := d.stores.Templates.GetOrSeed(ctx, models.TemplateTypeFor(req.Category))
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("resolve template: %v", err)}
	}

	nType, err := d.stores.Types.GetOrCreate(ctx, string(req.Category), models.ChannelEmail, tmpl.Subject, tmpl.TextBody)
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("resolve notification type: %v", err)}
	}

	vars := d.platformVariables()
	for k, v := range req.Variables {
		vars[k] = v
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityFor(req.Category)
	}

	recordOnly := req.Category == models.CategoryEmailVerification &&
		d.cfg.Notifications.VerificationDelivery == config.VerificationRecordOnly

	if !recordOnly && !d.cfg.Notifications.Email.Enabled && !d.smsEligible(req.PhoneNumber, priority, prefs) {
		d.logger.Info("dispatch skipped, no enabled channel can deliver", map[string]interface{}{
			"userId":   req.UserID,
			"category": string(req.Category),
		})
		return Result{Success: false, Skipped: true, Message: "email channel disabled"}
	}

	metadata := map[string]interface{}{"category": string(req.Category)}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	templateID := tmpl.ID
	n := &models.Notification{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		TypeID:      nType.ID,
		TemplateID:  &templateID,
		Subject:     template.Render(tmpl.Subject, vars),
		Message:     template.Render(tmpl.TextBody, vars),
		HTMLMessage: template.Render(tmpl.HTMLBody, vars),
		Status:      models.StatusPending,
		Priority:    priority,
		MaxRetries:  d.cfg.Notifications.MaxRetries,
		Metadata:    metadata,
	}
	if n.Message == "" && n.HTMLMessage != "" {
		n.Message = template.HTMLToText(n.HTMLMessage)
	}

	if err := d.stores.Records.Create(ctx, n); err != nil {
		return Result{Success: false, Message: fmt.Sprintf("create record: %v", err)}
	}

	if recordOnly {
		return d.finish(ctx, n, req.Category, channel.Result{Success: true, Message: "verification recorded without delivery"})
	}

	return d.finish(ctx, n, req.Category, d.deliver(ctx, n, prefs))
}

// Retry re-attempts delivery of a FAILED record. The store claim atomically
// consumes one retry attempt and leaves the record FAILED until the outcome
// is written, so the budget bound holds even across racing retries or a crash
// mid-attempt.
func (d *Dispatcher) Retry(ctx context.Context, recordID string) Result {
	n, err := d.stores.Records.ClaimRetry(ctx, recordID)
	if err != nil {
		metrics.Retries.WithLabelValues("rejected").Inc()
		switch err {
		case store.ErrNotFound:
			return Result{Success: false, Message: "notification not found"}
		case store.ErrRetryNotPermitted:
			return Result{Success: false, Message: "retry not permitted: record is not FAILED or retries are exhausted"}
		default:
			return Result{Success: false, Message: fmt.Sprintf("claim retry: %v", err)}
		}
	}

	d.logger.Info("retrying notification", map[string]interface{}{
		"notificationId": n.ID,
		"retryCount":     n.RetryCount,
	})

	category := categoryFromMetadata(n)
	prefs, err := d.stores.Preferences.GetOrCreate(ctx, n.UserID, n.Email)
	if err != nil {
		d.markFailed(ctx, n, fmt.Sprintf("load preferences: %v", err))
		metrics.Retries.WithLabelValues("failed").Inc()
		return Result{Success: false, Message: fmt.Sprintf("load preferences: %v", err), NotificationID: n.ID}
	}

	res := d.finish(ctx, n, category, d.deliver(ctx, n, prefs))
	if res.Success {
		metrics.Retries.WithLabelValues("sent").Inc()
	} else {
		metrics.Retries.WithLabelValues("failed").Inc()
	}
	return res
}

func (d *Dispatcher) deliver(ctx context.Context, n *models.Notification, prefs *models.NotificationPreference) channel.Result {
	timeout := time.Duration(d.cfg.Notifications.DispatchTimeout) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	emailRes := channel.Result{Success: false, Message: "email channel disabled"}
	if d.cfg.Notifications.Email.Enabled {
		emailRes = d.email.Send(ctx, channel.EmailMessage{
			To:       n.Email,
			Subject:  n.Subject,
			HTMLBody: n.HTMLMessage,
			TextBody: n.Message,
		})
	}

	if d.shouldSendSMS(n, prefs) {
		smsRes := d.sms.Send(ctx, n.PhoneNumber, n.Subject+": "+n.Message)
		if !smsRes.Success {
			d.logger.Warn("SMS delivery failed", map[string]interface{}{
				"notificationId": n.ID,
				"message":        smsRes.Message,
			})
		} else if !emailRes.Success {
			// SMS reached the user even though email did not.
			return smsRes
		}
	}

	return emailRes
}

func (d *Dispatcher) shouldSendSMS(n *models.Notification, prefs *models.NotificationPreference) bool {
	return d.smsEligible(n.PhoneNumber, n.Priority, prefs)
}

func (d *Dispatcher) smsEligible(phone string, priority models.NotificationPriority, prefs *models.NotificationPreference) bool {
	if d.sms == nil || !d.cfg.Notifications.SMS.Enabled {
		return false
	}
	if phone == "" || !prefs.SMSNotifications {
		return false
	}
	if prefs.SMSUrgentOnly && priority != models.PriorityUrgent {
		return false
	}
	return priorityRank(priority) >= priorityRank(models.NotificationPriority(d.cfg.Notifications.SMS.PriorityThreshold))
}

func (d *Dispatcher) finish(ctx context.Context, n *models.Notification, category models.Category, res channel.Result) Result {
	if res.Success {
		sentAt := d.now()
		if err := d.stores.Records.MarkSent(ctx, n.ID, sentAt); err != nil {
			d.logger.Error("mark sent", map[string]interface{}{
				"error":          err,
				"notificationId": n.ID,
			})
		}
		n.Status = models.StatusSent
		n.SentAt = &sentAt
		n.ErrorMessage = ""
	} else {
		d.markFailed(ctx, n, res.Message)
	}

	if d.auditor != nil {
		d.auditor.Record(ctx, n, category)
	}

	return Result{Success: res.Success, Message: res.Message, NotificationID: n.ID}
}

func (d *Dispatcher) markFailed(ctx context.Context, n *models.Notification, message string) {
	if err := d.stores.Records.MarkFailed(ctx, n.ID, message); err != nil {
		d.logger.Error("mark failed", map[string]interface{}{
			"error":          err,
			"notificationId": n.ID,
		})
	}
	n.Status = models.StatusFailed
	n.ErrorMessage = message
}

func (d *Dispatcher) platformVariables() map[string]interface{} {
	return map[string]interface{}{
		"platform_name": d.cfg.Notifications.PlatformName,
		"support_email": d.cfg.Notifications.SupportEmail,
		"login_url":     d.cfg.Notifications.LoginURL,
		"base_url":      d.cfg.Notifications.FrontendBaseURL,
		"current_year":  d.now().Year(),
	}
}

// allowed applies the preference gate. Verification and password reset mail
// is transactional and bypasses opt-outs.
func allowed(c models.Category, prefs *models.NotificationPreference) bool {
	switch c {
	case models.CategoryEmailVerification, models.CategoryPasswordReset:
		return true
	}
	if !prefs.EmailNotifications {
		return false
	}
	switch c {
	case models.CategoryWelcomeEmail:
		return prefs.WelcomeEmails
	case models.CategoryHearingReminder:
		return prefs.HearingReminders
	case models.CategoryCaseUpdate:
		return prefs.CaseUpdates
	case models.CategoryDocumentShared:
		return prefs.DocumentNotifications
	case models.CategoryPaymentConfirmation:
		return prefs.PaymentNotifications
	}
	return true
}

func categoryFromMetadata(n *models.Notification) models.Category {
	if n.Metadata != nil {
		if c, ok := n.Metadata["category"].(string); ok && c != "" {
			return models.Category(c)
		}
	}
	return models.CategoryWelcomeEmail
}

func priorityRank(p models.NotificationPriority) int {
	switch p {
	case models.PriorityLow:
		return 0
	case models.PriorityNormal:
		return 1
	case models.PriorityHigh:
		return 2
	case models.PriorityUrgent:
		return 3
	}
	return 1
}

func dispatchOutcome(res Result) string {
	switch {
	case res.Skipped:
		return "skipped"
	case res.Success:
		return "sent"
	default:
		return "failed"
	}
}
