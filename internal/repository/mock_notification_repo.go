package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wishfox/notifier/internal/domain"
)

// MockNotificationRepository is a hand-written, in-memory implementation of
// NotificationRepository used in unit tests. No mock-generation library needed.
// Claim holds the mutex across the check-and-set, giving the same atomicity
// the conditional UPDATE provides in PostgreSQL.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*domain.Notification
	events        map[string]*domain.Event

	// Optional error overrides — set in tests to simulate failure paths.
	CreateFanOutErr error
	ClaimErr        error
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		notifications: make(map[string]*domain.Notification),
		events:        make(map[string]*domain.Event),
	}
}

func (m *MockNotificationRepository) CreateFanOut(
	_ context.Context,
	event *domain.Event,
	recipients []int64,
	typ domain.NotificationType,
	payload domain.Payload,
) ([]*domain.Notification, error) {
	if m.CreateFanOutErr != nil {
		return nil, m.CreateFanOutErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	event.CreatedAt = now
	eventClone := *event
	m.events[event.ID] = &eventClone

	notifications := make([]*domain.Notification, 0, len(recipients))
	for _, recipientID := range recipients {
		n := &domain.Notification{
			ID:          uuid.New().String(),
			RecipientID: recipientID,
			Type:        typ,
			Payload:     payload,
			Status:      domain.StatusPending,
			CreatedAt:   now,
		}
		m.notifications[n.ID] = n
		clone := *n
		notifications = append(notifications, &clone)
	}
	return notifications, nil
}

func (m *MockNotificationRepository) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (m *MockNotificationRepository) ListByRecipient(_ context.Context, f domain.ListFilter) ([]*domain.Notification, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Notification
	for _, n := range m.notifications {
		if n.RecipientID == f.RecipientID {
			clone := *n
			result = append(result, &clone)
		}
	}
	return result, len(result), nil
}

func (m *MockNotificationRepository) Claim(_ context.Context, id string) (*domain.Notification, bool, error) {
	if m.ClaimErr != nil {
		return nil, false, m.ClaimErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.Status != domain.StatusPending {
		return nil, false, nil
	}
	now := time.Now().UTC()
	n.Status = domain.StatusSending
	n.ClaimedAt = &now
	clone := *n
	return &clone, true, nil
}

func (m *MockNotificationRepository) FinalizeSent(_ context.Context, id string, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notifications[id]; ok && n.Status == domain.StatusSending {
		n.Status = domain.StatusSent
		n.SentAt = &sentAt
		n.Error = nil
	}
	return nil
}

func (m *MockNotificationRepository) MarkSuppressed(_ context.Context, id, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notifications[id]; ok && n.Status == domain.StatusSending {
		n.Status = domain.StatusSuppressed
		n.Error = &reason
	}
	return nil
}

func (m *MockNotificationRepository) RevertToPending(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notifications[id]; ok && n.Status == domain.StatusSending {
		n.Status = domain.StatusPending
		n.ClaimedAt = nil
	}
	return nil
}

func (m *MockNotificationRepository) FindStalePending(_ context.Context, age time.Duration, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cutoff := time.Now().UTC().Add(-age)
	var ids []string
	for _, n := range m.notifications {
		if len(ids) >= limit {
			break
		}
		if n.Status == domain.StatusPending && !n.CreatedAt.After(cutoff) {
			ids = append(ids, n.ID)
		}
	}
	return ids, nil
}

func (m *MockNotificationRepository) FindStaleClaims(_ context.Context, age time.Duration, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cutoff := time.Now().UTC().Add(-age)
	var ids []string
	for _, n := range m.notifications {
		if len(ids) >= limit {
			break
		}
		if n.Status == domain.StatusSending && n.ClaimedAt != nil && !n.ClaimedAt.After(cutoff) {
			ids = append(ids, n.ID)
		}
	}
	return ids, nil
}
