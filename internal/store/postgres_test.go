package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalease-notifications/internal/common/logger"
	"legalease-notifications/internal/models"
)

func notificationRows(id string, status models.NotificationStatus, retryCount int) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "user_id", "email", "phone_number", "type_id", "template_id",
		"subject", "message", "html_message", "status", "priority",
		"sent_at", "delivered_at", "read_at", "error_message", "retry_count", "max_retries",
		"metadata", "created_at", "updated_at",
	}).AddRow(
		id, "user-1", "a@b.com", nil, int64(1), int64(2),
		"subject", "message", "<p>message</p>", string(status), "NORMAL",
		nil, nil, nil, "boom", retryCount, 3,
		[]byte(`{"category":"welcome_email"}`), now, now,
	)
}

func TestClaimRetrySucceeds(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("UPDATE notifications").
		WithArgs("n-1", "FAILED").
		WillReturnRows(notificationRows("n-1", models.StatusFailed, 1))

	s := NewPostgresRecordStore(db, logger.NewNoOpLogger())
	n, err := s.ClaimRetry(context.Background(), "n-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n.RetryCount)
	assert.Equal(t, models.StatusFailed, n.Status, "claim must not move the record out of FAILED")
	assert.Equal(t, "welcome_email", n.Metadata["category"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimRetryNotPermitted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// The conditional update matches nothing, but the record exists.
	mock.ExpectQuery("UPDATE notifications").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT (.+) FROM notifications WHERE id").
		WillReturnRows(notificationRows("n-2", models.StatusSent, 0))

	s := NewPostgresRecordStore(db, logger.NewNoOpLogger())
	_, err = s.ClaimRetry(context.Background(), "n-2")
	assert.Equal(t, ErrRetryNotPermitted, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimRetryUnknownRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("UPDATE notifications").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT (.+) FROM notifications WHERE id").
		WillReturnError(sql.ErrNoRows)

	s := NewPostgresRecordStore(db, logger.NewNoOpLogger())
	_, err = s.ClaimRetry(context.Background(), "missing")
	assert.Equal(t, ErrNotFound, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSentUnknownRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE notifications").
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := NewPostgresRecordStore(db, logger.NewNoOpLogger())
	err = s.MarkSent(context.Background(), "missing", time.Now())
	assert.Equal(t, ErrNotFound, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func templateRows(id int64) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "name", "template_type", "subject", "html_body", "text_body",
		"variables", "is_active", "created_at", "updated_at",
	}).AddRow(
		id, "Welcome Email", "WELCOME", "Welcome!", "<p>hi</p>", "hi",
		[]byte(`{"username":"User's display name"}`), true, now, now,
	)
}

func TestGetOrSeedSeedsDefaultOnFirstUse(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM notification_templates").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO notification_templates").
		WillReturnRows(templateRows(5))

	s := NewPostgresTemplateStore(db, logger.NewNoOpLogger())
	tmpl, err := s.GetOrSeed(context.Background(), models.TemplateWelcome)
	require.NoError(t, err)
	assert.Equal(t, int64(5), tmpl.ID)
	assert.Equal(t, models.TemplateWelcome, tmpl.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSeedReturnsExistingWithoutInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM notification_templates").
		WillReturnRows(templateRows(5))

	s := NewPostgresTemplateStore(db, logger.NewNoOpLogger())
	tmpl, err := s.GetOrSeed(context.Background(), models.TemplateWelcome)
	require.NoError(t, err)
	assert.Equal(t, int64(5), tmpl.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSeedLoserOfConcurrentSeedReReads(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM notification_templates").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO notification_templates").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery("SELECT (.+) FROM notification_templates").
		WillReturnRows(templateRows(9))

	s := NewPostgresTemplateStore(db, logger.NewNoOpLogger())
	tmpl, err := s.GetOrSeed(context.Background(), models.TemplateWelcome)
	require.NoError(t, err)
	assert.Equal(t, int64(9), tmpl.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func preferenceRows(userID string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "user_id", "email", "email_notifications", "welcome_emails",
		"hearing_reminders", "case_updates", "document_notifications", "payment_notifications",
		"sms_notifications", "sms_urgent_only", "push_notifications", "created_at", "updated_at",
	}).AddRow(
		int64(1), userID, "a@b.com", true, true,
		true, true, true, true,
		false, true, true, now, now,
	)
}

func TestPreferenceGetOrCreateLoserOfInsertRaceReReads(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM notification_preferences").
		WillReturnError(sql.ErrNoRows)
	// ON CONFLICT DO NOTHING returns no row when another worker won the insert.
	mock.ExpectQuery("INSERT INTO notification_preferences").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT (.+) FROM notification_preferences").
		WillReturnRows(preferenceRows("user-1"))

	s := NewPostgresPreferenceStore(db)
	p, err := s.GetOrCreate(context.Background(), "user-1", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", p.UserID)
	assert.False(t, p.SMSNotifications)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTypeGetOrCreateInsertsOnFirstUse(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	typeRow := sqlmock.NewRows([]string{
		"id", "name", "kind", "template_subject", "template_body", "is_active", "created_at",
	}).AddRow(int64(3), "welcome_email", "EMAIL", "Welcome!", "hi", true, now)

	mock.ExpectQuery("SELECT (.+) FROM notification_types").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO notification_types").
		WillReturnRows(typeRow)

	s := NewPostgresTypeStore(db)
	nt, err := s.GetOrCreate(context.Background(), "welcome_email", models.ChannelEmail, "Welcome!", "hi")
	require.NoError(t, err)
	assert.Equal(t, int64(3), nt.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaRunsEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schemaStatements {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
