package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"legalease-notifications/internal/models"
	"legalease-notifications/internal/template"
)

// Memory is an in-process implementation of all four store interfaces,
// used in tests and for local runs without Postgres.
type Memory struct {
	mu          sync.Mutex
	records     map[string]*models.Notification
	types       map[string]*models.NotificationType
	templates   map[models.TemplateType]*models.NotificationTemplate
	preferences map[string]*models.NotificationPreference
	nextID      int64
}

func NewMemory() *Memory {
	return &Memory{
		records:     make(map[string]*models.Notification),
		types:       make(map[string]*models.NotificationType),
		templates:   make(map[models.TemplateType]*models.NotificationTemplate),
		preferences: make(map[string]*models.NotificationPreference),
	}
}

func (m *Memory) Create(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	cp := *n
	m.records[n.ID] = &cp
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *Memory) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	n.Status = models.StatusSent
	n.SentAt = &sentAt
	n.ErrorMessage = ""
	n.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) MarkFailed(ctx context.Context, id, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	n.Status = models.StatusFailed
	n.ErrorMessage = errorMessage
	n.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) ClaimRetry(ctx context.Context, id string) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !n.CanRetry() {
		return nil, ErrRetryNotPermitted
	}
	// Stays FAILED until the attempt's outcome is written.
	n.RetryCount++
	n.UpdatedAt = time.Now().UTC()
	cp := *n
	return &cp, nil
}

func (m *Memory) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	return m.filter(func(n *models.Notification) bool { return n.UserID == userID }, limit)
}

func (m *Memory) ListByStatus(ctx context.Context, status models.NotificationStatus, limit int) ([]*models.Notification, error) {
	return m.filter(func(n *models.Notification) bool { return n.Status == status }, limit)
}

func (m *Memory) filter(match func(*models.Notification) bool, limit int) ([]*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Notification
	for _, n := range m.records {
		if match(n) {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	limit = clampLimit(limit)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) GetOrCreate(ctx context.Context, name string, kind models.ChannelKind, subject, body string) (*models.NotificationType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.types[name]; ok {
		cp := *t
		return &cp, nil
	}
	m.nextID++
	t := &models.NotificationType{
		ID:              m.nextID,
		Name:            name,
		Kind:            kind,
		TemplateSubject: subject,
		TemplateBody:    body,
		IsActive:        true,
		CreatedAt:       time.Now().UTC(),
	}
	m.types[name] = t
	cp := *t
	return &cp, nil
}

func (m *Memory) GetOrSeed(ctx context.Context, tt models.TemplateType) (*models.NotificationTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tmpl, ok := m.templates[tt]; ok {
		cp := *tmpl
		return &cp, nil
	}
	def := template.DefaultFor(tt)
	m.nextID++
	now := time.Now().UTC()
	tmpl := &models.NotificationTemplate{
		ID:        m.nextID,
		Name:      def.Name,
		Type:      tt,
		Subject:   def.Subject,
		HTMLBody:  def.HTMLBody,
		TextBody:  def.TextBody,
		Variables: def.Variables,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.templates[tt] = tmpl
	cp := *tmpl
	return &cp, nil
}

func (m *Memory) GetOrCreatePreference(ctx context.Context, userID, email string) (*models.NotificationPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.preferences[userID]; ok {
		cp := *p
		return &cp, nil
	}
	m.nextID++
	now := time.Now().UTC()
	p := models.DefaultPreferences(userID, email)
	p.ID = m.nextID
	p.CreatedAt = now
	p.UpdatedAt = now
	m.preferences[userID] = p
	cp := *p
	return &cp, nil
}

// SetPreference replaces a user's preference row, for tests that exercise
// opt-out behavior.
func (m *Memory) SetPreference(p *models.NotificationPreference) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.preferences[p.UserID] = &cp
}

// Preferences adapts Memory to the PreferenceStore interface. The method name
// on Memory differs because TypeStore already claims GetOrCreate.
type memoryPreferences struct{ m *Memory }

func (m *Memory) Preferences() PreferenceStore { return memoryPreferences{m} }

func (mp memoryPreferences) GetOrCreate(ctx context.Context, userID, email string) (*models.NotificationPreference, error) {
	return mp.m.GetOrCreatePreference(ctx, userID, email)
}
