package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"legalease-notifications/internal/common/logger"
	"legalease-notifications/internal/models"
	"legalease-notifications/internal/template"
)

const notificationColumns = `id, user_id, email, phone_number, type_id, template_id,
	subject, message, html_message, status, priority,
	sent_at, delivered_at, read_at, error_message, retry_count, max_retries,
	metadata, created_at, updated_at`

// PostgresRecordStore implements RecordStore on a notifications table.
type PostgresRecordStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewPostgresRecordStore(db *sql.DB, log logger.Logger) *PostgresRecordStore {
	return &PostgresRecordStore{db: db, log: log}
}

func (s *PostgresRecordStore) Create(ctx context.Context, n *models.Notification) error {
	metadata, err := json.Marshal(n.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if n.Metadata == nil {
		metadata = []byte("{}")
	}

	query := `INSERT INTO notifications
		(id, user_id, email, phone_number, type_id, template_id,
		 subject, message, html_message, status, priority,
		 error_message, retry_count, max_retries, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`

	err = s.db.QueryRowContext(ctx, query,
		n.ID, n.UserID, n.Email, nullString(n.PhoneNumber), n.TypeID, nullInt64(n.TemplateID),
		n.Subject, n.Message, n.HTMLMessage, n.Status, n.Priority,
		n.ErrorMessage, n.RetryCount, n.MaxRetries, metadata,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresRecordStore) Get(ctx context.Context, id string) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	n, err := scanNotification(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (s *PostgresRecordStore) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	query := `UPDATE notifications
		SET status = $1, sent_at = $2, error_message = '', updated_at = NOW()
		WHERE id = $3`
	return s.exec(ctx, query, models.StatusSent, sentAt, id)
}

func (s *PostgresRecordStore) MarkFailed(ctx context.Context, id, errorMessage string) error {
	query := `UPDATE notifications
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE id = $3`
	return s.exec(ctx, query, models.StatusFailed, errorMessage, id)
}

// ClaimRetry is the retry-budget guard: the conditional update only matches a
// FAILED record with attempts remaining, and the atomic increment makes every
// claim consume one attempt. The record stays FAILED during the attempt, so a
// crash before the outcome write leaves it visible to FAILED queries and still
// retryable within its remaining budget.
func (s *PostgresRecordStore) ClaimRetry(ctx context.Context, id string) (*models.Notification, error) {
	query := `UPDATE notifications
		SET retry_count = retry_count + 1, updated_at = NOW()
		WHERE id = $1 AND status = $2 AND retry_count < max_retries
		RETURNING ` + notificationColumns

	n, err := scanNotification(s.db.QueryRowContext(ctx, query, id, models.StatusFailed))
	if err == sql.ErrNoRows {
		// Distinguish "no such record" from "record not retryable".
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrRetryNotPermitted
	}
	if err != nil {
		return nil, fmt.Errorf("claim retry: %w", err)
	}
	return n, nil
}

func (s *PostgresRecordStore) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	return s.list(ctx, query, userID, clampLimit(limit))
}

func (s *PostgresRecordStore) ListByStatus(ctx context.Context, status models.NotificationStatus, limit int) ([]*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE status = $1 ORDER BY created_at DESC LIMIT $2`
	return s.list(ctx, query, status, clampLimit(limit))
}

func (s *PostgresRecordStore) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresRecordStore) list(ctx context.Context, query string, args ...interface{}) ([]*models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var (
		n          models.Notification
		phone      sql.NullString
		templateID sql.NullInt64
		sentAt     sql.NullTime
		delivered  sql.NullTime
		readAt     sql.NullTime
		metadata   []byte
	)
	err := row.Scan(
		&n.ID, &n.UserID, &n.Email, &phone, &n.TypeID, &templateID,
		&n.Subject, &n.Message, &n.HTMLMessage, &n.Status, &n.Priority,
		&sentAt, &delivered, &readAt, &n.ErrorMessage, &n.RetryCount, &n.MaxRetries,
		&metadata, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.PhoneNumber = phone.String
	if templateID.Valid {
		n.TemplateID = &templateID.Int64
	}
	if sentAt.Valid {
		t := sentAt.Time
		n.SentAt = &t
	}
	if delivered.Valid {
		t := delivered.Time
		n.DeliveredAt = &t
	}
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &n, nil
}

// PostgresTypeStore implements TypeStore with lazy get-or-create semantics.
type PostgresTypeStore struct {
	db *sql.DB
}

func NewPostgresTypeStore(db *sql.DB) *PostgresTypeStore {
	return &PostgresTypeStore{db: db}
}

const typeColumns = `id, name, kind, template_subject, template_body, is_active, created_at`

func (s *PostgresTypeStore) GetOrCreate(ctx context.Context, name string, kind models.ChannelKind, subject, body string) (*models.NotificationType, error) {
	t, err := s.getByName(ctx, name)
	if err == nil {
		return t, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	query := `INSERT INTO notification_types (name, kind, template_subject, template_body)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
		RETURNING ` + typeColumns

	t, err = scanType(s.db.QueryRowContext(ctx, query, name, kind, subject, body))
	if err == sql.ErrNoRows {
		// A concurrent worker won the insert; read its row.
		return s.getByName(ctx, name)
	}
	if err != nil {
		return nil, fmt.Errorf("create notification type: %w", err)
	}
	return t, nil
}

func (s *PostgresTypeStore) getByName(ctx context.Context, name string) (*models.NotificationType, error) {
	query := `SELECT ` + typeColumns + ` FROM notification_types WHERE name = $1`
	t, err := scanType(s.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification type: %w", err)
	}
	return t, nil
}

func scanType(row rowScanner) (*models.NotificationType, error) {
	var t models.NotificationType
	err := row.Scan(&t.ID, &t.Name, &t.Kind, &t.TemplateSubject, &t.TemplateBody, &t.IsActive, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// PostgresTemplateStore implements TemplateStore, seeding the built-in
// default template on first lookup of a template type.
type PostgresTemplateStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewPostgresTemplateStore(db *sql.DB, log logger.Logger) *PostgresTemplateStore {
	return &PostgresTemplateStore{db: db, log: log}
}

const templateColumns = `id, name, template_type, subject, html_body, text_body, variables, is_active, created_at, updated_at`

func (s *PostgresTemplateStore) GetOrSeed(ctx context.Context, t models.TemplateType) (*models.NotificationTemplate, error) {
	tmpl, err := s.getActive(ctx, t)
	if err == nil {
		return tmpl, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	def := template.DefaultFor(t)
	variables, err := json.Marshal(def.Variables)
	if err != nil {
		return nil, fmt.Errorf("marshal template variables: %w", err)
	}

	query := `INSERT INTO notification_templates (name, template_type, subject, html_body, text_body, variables)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + templateColumns

	tmpl, err = scanTemplate(s.db.QueryRowContext(ctx, query,
		def.Name, t, def.Subject, def.HTMLBody, def.TextBody, variables))
	if err != nil {
		// The partial unique index allows one active template per type; a
		// concurrent seeder losing the race re-reads the winner's row.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return s.getActive(ctx, t)
		}
		return nil, fmt.Errorf("seed template: %w", err)
	}
	s.log.Info("seeded default template", map[string]interface{}{"template_type": string(t)})
	return tmpl, nil
}

func (s *PostgresTemplateStore) getActive(ctx context.Context, t models.TemplateType) (*models.NotificationTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM notification_templates
		WHERE template_type = $1 AND is_active`
	tmpl, err := scanTemplate(s.db.QueryRowContext(ctx, query, t))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return tmpl, nil
}

func scanTemplate(row rowScanner) (*models.NotificationTemplate, error) {
	var (
		tmpl      models.NotificationTemplate
		variables []byte
	)
	err := row.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Type, &tmpl.Subject, &tmpl.HTMLBody,
		&tmpl.TextBody, &variables, &tmpl.IsActive, &tmpl.CreatedAt, &tmpl.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(variables) > 0 {
		if err := json.Unmarshal(variables, &tmpl.Variables); err != nil {
			return nil, fmt.Errorf("unmarshal template variables: %w", err)
		}
	}
	return &tmpl, nil
}

// PostgresPreferenceStore implements PreferenceStore, creating the default
// all-opt-in row on first reference to a user.
type PostgresPreferenceStore struct {
	db *sql.DB
}

func NewPostgresPreferenceStore(db *sql.DB) *PostgresPreferenceStore {
	return &PostgresPreferenceStore{db: db}
}

const preferenceColumns = `id, user_id, email, email_notifications, welcome_emails,
	hearing_reminders, case_updates, document_notifications, payment_notifications,
	sms_notifications, sms_urgent_only, push_notifications, created_at, updated_at`

func (s *PostgresPreferenceStore) GetOrCreate(ctx context.Context, userID, email string) (*models.NotificationPreference, error) {
	p, err := s.getByUser(ctx, userID)
	if err == nil {
		return p, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	def := models.DefaultPreferences(userID, email)
	query := `INSERT INTO notification_preferences
		(user_id, email, email_notifications, welcome_emails, hearing_reminders,
		 case_updates, document_notifications, payment_notifications,
		 sms_notifications, sms_urgent_only, push_notifications)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING ` + preferenceColumns

	p, err = scanPreference(s.db.QueryRowContext(ctx, query,
		def.UserID, def.Email, def.EmailNotifications, def.WelcomeEmails, def.HearingReminders,
		def.CaseUpdates, def.DocumentNotifications, def.PaymentNotifications,
		def.SMSNotifications, def.SMSUrgentOnly, def.PushNotifications))
	if err == sql.ErrNoRows {
		return s.getByUser(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("create preferences: %w", err)
	}
	return p, nil
}

func (s *PostgresPreferenceStore) getByUser(ctx context.Context, userID string) (*models.NotificationPreference, error) {
	query := `SELECT ` + preferenceColumns + ` FROM notification_preferences WHERE user_id = $1`
	p, err := scanPreference(s.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

func scanPreference(row rowScanner) (*models.NotificationPreference, error) {
	var p models.NotificationPreference
	err := row.Scan(&p.ID, &p.UserID, &p.Email, &p.EmailNotifications, &p.WelcomeEmails,
		&p.HearingReminders, &p.CaseUpdates, &p.DocumentNotifications, &p.PaymentNotifications,
		&p.SMSNotifications, &p.SMSUrgentOnly, &p.PushNotifications, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}
