package repository

import (
	"context"
	"sync"

	"github.com/wishfox/notifier/internal/domain"
)

// MockDirectoryRepository is an in-memory DirectoryRepository for unit tests.
type MockDirectoryRepository struct {
	mu         sync.RWMutex
	contexts   map[int64]*domain.WishContext
	followers  map[int64][]int64
	recipients map[int64]*domain.Recipient
}

func NewMockDirectoryRepository() *MockDirectoryRepository {
	return &MockDirectoryRepository{
		contexts:   make(map[int64]*domain.WishContext),
		followers:  make(map[int64][]int64),
		recipients: make(map[int64]*domain.Recipient),
	}
}

func (m *MockDirectoryRepository) SetWishContext(wishID int64, wc *domain.WishContext) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *wc
	m.contexts[wishID] = &clone
}

func (m *MockDirectoryRepository) SetFollowers(userID int64, followers ...int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.followers[userID] = followers
}

func (m *MockDirectoryRepository) SetRecipient(rec *domain.Recipient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *rec
	m.recipients[rec.UserID] = &clone
}

func (m *MockDirectoryRepository) WishContext(_ context.Context, wishID int64) (*domain.WishContext, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wc, ok := m.contexts[wishID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *wc
	return &clone, nil
}

func (m *MockDirectoryRepository) FollowersOf(_ context.Context, userID int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int64(nil), m.followers[userID]...), nil
}

func (m *MockDirectoryRepository) Recipient(_ context.Context, userID int64) (*domain.Recipient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recipients[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}
