package services

import (
	"context"
	"sync"
	"time"

	"github.com/kgrierson/stronghold/internal/models"
	pkgauth "github.com/kgrierson/stronghold/pkg/auth"
)

// MockAccountRepository implements AccountRepository for testing
type MockAccountRepository struct {
	GetByUsernameFunc func(ctx context.Context, username string) (*models.Account, error)
	GetByIDFunc       func(ctx context.Context, id int64) (*models.Account, error)
	SaveFunc          func(ctx context.Context, account *models.Account) error

	SavedAccounts []*models.Account
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) Save(ctx context.Context, account *models.Account) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, account)
	}
	m.SavedAccounts = append(m.SavedAccounts, account)
	return nil
}

// MockSecurityEventRepository implements SecurityEventRepository for testing
type MockSecurityEventRepository struct {
	CreateFunc        func(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error)
	ListByAccountFunc func(ctx context.Context, accountID int64, limit, offset int) ([]*models.SecurityEvent, error)

	CreatedEvents []*models.SecurityEvent
}

func (m *MockSecurityEventRepository) Create(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	m.CreatedEvents = append(m.CreatedEvents, event)
	return event, nil
}

func (m *MockSecurityEventRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*models.SecurityEvent, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	return []*models.SecurityEvent{}, nil
}

// RecordingAuditor implements SecurityAuditor and captures events in order
type RecordingAuditor struct {
	mu     sync.Mutex
	Events []RecordedEvent
}

type RecordedEvent struct {
	AccountID int64
	EventType string
	Details   string
}

func (a *RecordingAuditor) RecordSecurityEvent(ctx context.Context, accountID int64, eventType, details string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Events = append(a.Events, RecordedEvent{AccountID: accountID, EventType: eventType, Details: details})
}

// EventTypes returns the recorded event types in order
func (a *RecordingAuditor) EventTypes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	types := make([]string, len(a.Events))
	for i, e := range a.Events {
		types[i] = e.EventType
	}
	return types
}

// DefaultTestConfig mirrors the production defaults with wrapping disabled so
// repository errors stay visible in tests.
func DefaultTestConfig() Config {
	return Config{
		MaxFailedAttempts:     5,
		LockoutDuration:       30 * time.Minute,
		StrictLookup:          true,
		WrapPersistenceErrors: false,
		CommandTimeout:        5 * time.Second,
	}
}

// NewTestAccount creates an active basic-level account
func NewTestAccount(id int64, username, email string) *models.Account {
	now := time.Now()
	return &models.Account{
		ID:          id,
		Username:    username,
		Email:       email,
		AccessLevel: models.AccessLevelBasic,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
}

// NewTestAccountWithPassword creates an account whose hash matches password
func NewTestAccountWithPassword(id int64, username, password string) *models.Account {
	account := NewTestAccount(id, username, username+"@example.com")
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	account.PasswordHash = hash
	return account
}

// NewTestAccountWithLevel creates an account with the given access level
func NewTestAccountWithLevel(id int64, username string, level models.AccessLevel) *models.Account {
	account := NewTestAccount(id, username, username+"@example.com")
	account.AccessLevel = level
	return account
}

// NewTestAccountLocked creates an account locked for the given duration
func NewTestAccountLocked(id int64, username string, remaining time.Duration) *models.Account {
	account := NewTestAccount(id, username, username+"@example.com")
	end := time.Now().Add(remaining)
	reason := LockoutReasonMaxAttempts
	account.LockoutEnd = &end
	account.LockoutReason = &reason
	account.FailedLoginAttempts = 5
	return account
}
