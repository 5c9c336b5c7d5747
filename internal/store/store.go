// Package store persists notification records, types, templates, and
// preferences. The durable store is the only state shared between worker
// instances; every interface here is safe for concurrent use.
package store

import (
	"context"
	"errors"
	"time"

	"legalease-notifications/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("store: not found")
	// ErrRetryNotPermitted is returned by ClaimRetry when the record is not
	// FAILED or has exhausted max_retries. The claim is a conditional update,
	// so racing retries cannot exceed the budget between them.
	ErrRetryNotPermitted = errors.New("store: retry not permitted")
)

// RecordStore tracks the lifecycle of notification records.
type RecordStore interface {
	Create(ctx context.Context, n *models.Notification) error
	Get(ctx context.Context, id string) (*models.Notification, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id, errorMessage string) error
	// ClaimRetry atomically increments retry_count if and only if the record
	// is FAILED with retry_count < max_retries, and returns the updated row.
	// The status is left FAILED; the attempt's outcome write moves it.
	ClaimRetry(ctx context.Context, id string) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error)
	ListByStatus(ctx context.Context, status models.NotificationStatus, limit int) ([]*models.Notification, error)
}

// TypeStore lazily materializes notification types keyed by name.
type TypeStore interface {
	GetOrCreate(ctx context.Context, name string, kind models.ChannelKind, subject, body string) (*models.NotificationType, error)
}

// TemplateStore resolves the single active template per template type,
// seeding the built-in default on first use.
type TemplateStore interface {
	GetOrSeed(ctx context.Context, t models.TemplateType) (*models.NotificationTemplate, error)
}

// PreferenceStore resolves per-user opt-in flags, creating the default
// all-opt-in row on first reference.
type PreferenceStore interface {
	GetOrCreate(ctx context.Context, userID, email string) (*models.NotificationPreference, error)
}
