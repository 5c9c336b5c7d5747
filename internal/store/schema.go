package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements is applied in order at startup; every statement is
// idempotent so multiple worker instances can race on boot.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS notification_types (
		id               BIGSERIAL PRIMARY KEY,
		name             TEXT NOT NULL UNIQUE,
		kind             TEXT NOT NULL,
		template_subject TEXT NOT NULL DEFAULT '',
		template_body    TEXT NOT NULL DEFAULT '',
		is_active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS notification_templates (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL,
		template_type TEXT NOT NULL,
		subject       TEXT NOT NULL,
		html_body     TEXT NOT NULL,
		text_body     TEXT NOT NULL DEFAULT '',
		variables     JSONB NOT NULL DEFAULT '{}',
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// At most one active template per template_type.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_notification_templates_active_type
		ON notification_templates (template_type) WHERE is_active`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id            UUID PRIMARY KEY,
		user_id       TEXT NOT NULL,
		email         TEXT NOT NULL,
		phone_number  TEXT,
		type_id       BIGINT NOT NULL REFERENCES notification_types (id),
		template_id   BIGINT REFERENCES notification_templates (id) ON DELETE SET NULL,
		subject       TEXT NOT NULL DEFAULT '',
		message       TEXT NOT NULL DEFAULT '',
		html_message  TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'PENDING',
		priority      TEXT NOT NULL DEFAULT 'NORMAL',
		sent_at       TIMESTAMPTZ,
		delivered_at  TIMESTAMPTZ,
		read_at       TIMESTAMPTZ,
		error_message TEXT NOT NULL DEFAULT '',
		retry_count   INTEGER NOT NULL DEFAULT 0,
		max_retries   INTEGER NOT NULL DEFAULT 3,
		metadata      JSONB NOT NULL DEFAULT '{}',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT chk_retry_bound CHECK (retry_count <= max_retries)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_status ON notifications (status)`,

	`CREATE TABLE IF NOT EXISTS notification_preferences (
		id                     BIGSERIAL PRIMARY KEY,
		user_id                TEXT NOT NULL UNIQUE,
		email                  TEXT NOT NULL DEFAULT '',
		email_notifications    BOOLEAN NOT NULL DEFAULT TRUE,
		welcome_emails         BOOLEAN NOT NULL DEFAULT TRUE,
		hearing_reminders      BOOLEAN NOT NULL DEFAULT TRUE,
		case_updates           BOOLEAN NOT NULL DEFAULT TRUE,
		document_notifications BOOLEAN NOT NULL DEFAULT TRUE,
		payment_notifications  BOOLEAN NOT NULL DEFAULT TRUE,
		sms_notifications      BOOLEAN NOT NULL DEFAULT FALSE,
		sms_urgent_only        BOOLEAN NOT NULL DEFAULT TRUE,
		push_notifications     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the notification tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
