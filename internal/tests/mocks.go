package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	CreateCallCount  int32
	GetByIDCallCount int32

	// Error injection
	CreateError  error
	GetByIDError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	if m.GetByIDError != nil {
		return nil, m.GetByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

// CountUsers returns the number of stored users.
func (m *MockUserRepository) CountUsers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// ──────────────────────────────────────────────
// MOCK SESSION STORE
// ──────────────────────────────────────────────

// MockSessionStore is a mock implementation of SessionStoreInterface.
type MockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
	ttls     map[string]time.Duration

	// Error injection
	CreateError error
	GetError    error
}

// NewMockSessionStore creates a new mock session store.
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		sessions: make(map[string]string),
		ttls:     make(map[string]time.Duration),
	}
}

func (m *MockSessionStore) Create(ctx context.Context, token, userID string, ttl time.Duration) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = userID
	m.ttls[token] = ttl
	return nil
}

func (m *MockSessionStore) Get(ctx context.Context, token string) (string, bool, error) {
	if m.GetError != nil {
		return "", false, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.sessions[token]
	return userID, ok, nil
}

func (m *MockSessionStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	delete(m.ttls, token)
	return nil
}

// Expire drops a session as if its TTL ran out.
func (m *MockSessionStore) Expire(token string) {
	m.Delete(context.Background(), token)
}

// TTL returns the lifetime a session was created with.
func (m *MockSessionStore) TTL(token string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[token]
}

// CountSessions returns the number of live sessions.
func (m *MockSessionStore) CountSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ──────────────────────────────────────────────
// MOCK TRIP CACHE
// ──────────────────────────────────────────────

// MockTripCache is a mock implementation of TripCacheInterface.
type MockTripCache struct {
	mu          sync.RWMutex
	trips       map[string]*domain.Trip
	generations map[string]int64

	// Counters for verification
	HitCount        int32
	MissCount       int32
	InvalidateCount int32
	StaleWriteCount int32

	// Error injection
	GetError        error
	SetError        error
	InvalidateError error
}

// NewMockTripCache creates a new mock trip cache.
func NewMockTripCache() *MockTripCache {
	return &MockTripCache{
		trips:       make(map[string]*domain.Trip),
		generations: make(map[string]int64),
	}
}

func (m *MockTripCache) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.trips[tripID]; ok {
		atomic.AddInt32(&m.HitCount, 1)
		return t.Clone(), nil
	}
	atomic.AddInt32(&m.MissCount, 1)
	return nil, nil
}

func (m *MockTripCache) TripVersion(ctx context.Context, tripID string) (int64, error) {
	if m.GetError != nil {
		return 0, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generations[tripID], nil
}

func (m *MockTripCache) SetTrip(ctx context.Context, trip *domain.Trip, version int64) error {
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generations[trip.ID] != version {
		atomic.AddInt32(&m.StaleWriteCount, 1)
		return nil
	}
	m.trips[trip.ID] = trip.Clone()
	return nil
}

func (m *MockTripCache) InvalidateTrip(ctx context.Context, tripID string) error {
	atomic.AddInt32(&m.InvalidateCount, 1)
	if m.InvalidateError != nil {
		return m.InvalidateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations[tripID]++
	delete(m.trips, tripID)
	return nil
}

// IsCached reports whether a trip is currently cached.
func (m *MockTripCache) IsCached(tripID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.trips[tripID]
	return ok
}

// Ensure mocks implement interfaces.
var (
	_ repository.UserRepository   = (*MockUserRepository)(nil)
	_ redis.SessionStoreInterface = (*MockSessionStore)(nil)
	_ redis.TripCacheInterface    = (*MockTripCache)(nil)
)
