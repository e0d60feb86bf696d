package services

import (
	"log/slog"
	"sync"

	"github.com/kgrierson/stronghold/internal/models"
)

// SessionService owns the single in-process identity and answers role-based
// access checks against it. It is an injected dependency, not an ambient
// singleton; subscribers are notified synchronously on every identity change.
//
// The mutex makes concurrent set/clear/check calls safe, but there is still
// exactly one session slot: a second login replaces the first wholesale.
type SessionService struct {
	mu      sync.Mutex
	current *models.Account
	subs    map[int]func(*models.Account)
	nextSub int
	logger  *slog.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(logger *slog.Logger) *SessionService {
	return &SessionService{
		subs:   make(map[int]func(*models.Account)),
		logger: logger,
	}
}

// SetCurrentUser replaces the current identity and notifies subscribers.
func (s *SessionService) SetCurrentUser(account *models.Account) {
	s.mu.Lock()
	s.current = account
	subs := s.snapshotSubs()
	s.mu.Unlock()

	s.logger.Info("current user set",
		slog.String("username", account.Username),
		slog.String("access_level", account.AccessLevel.String()),
	)

	for _, fn := range subs {
		fn(account)
	}
}

// ClearCurrentUser removes the identity and notifies subscribers with nil.
// A no-op without notification when no identity is present.
func (s *SessionService) ClearCurrentUser() {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	username := s.current.Username
	s.current = nil
	subs := s.snapshotSubs()
	s.mu.Unlock()

	s.logger.Info("current user cleared", slog.String("username", username))

	for _, fn := range subs {
		fn(nil)
	}
}

// CurrentUser returns the active identity, or nil.
func (s *SessionService) CurrentUser() *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *SessionService) IsLoggedIn() bool {
	return s.CurrentUser() != nil
}

// CurrentAccessLevel returns the active identity's level, defaulting to
// Basic when nobody is logged in. Access checks still fail without an
// identity; the default only serves display call sites.
func (s *SessionService) CurrentAccessLevel() models.AccessLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.AccessLevelBasic
	}
	return s.current.AccessLevel
}

// HasRequiredAccess evaluates the strict total order Basic < Supervisor <
// Administrator. No identity, or an account carrying an unknown level, is
// denied. Grants log at info, denials at warn, so privilege use leaves a
// trace.
func (s *SessionService) HasRequiredAccess(required models.AccessLevel) bool {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	if current == nil {
		s.logger.Warn("access check failed: no user logged in",
			slog.String("required_level", required.String()))
		return false
	}

	var hasAccess bool
	switch current.AccessLevel {
	case models.AccessLevelAdministrator:
		hasAccess = true
	case models.AccessLevelSupervisor:
		hasAccess = required <= models.AccessLevelSupervisor
	case models.AccessLevelBasic:
		hasAccess = required == models.AccessLevelBasic
	default:
		hasAccess = false
	}

	if hasAccess {
		s.logger.Info("access granted",
			slog.String("username", current.Username),
			slog.String("access_level", current.AccessLevel.String()),
			slog.String("required_level", required.String()),
		)
	} else {
		s.logger.Warn("access denied",
			slog.String("username", current.Username),
			slog.String("access_level", current.AccessLevel.String()),
			slog.String("required_level", required.String()),
		)
	}

	return hasAccess
}

// Subscribe registers a callback invoked on every identity change with the
// new identity (nil on clear). The returned unsubscribe function is
// idempotent.
func (s *SessionService) Subscribe(fn func(*models.Account)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// snapshotSubs copies the subscriber list so callbacks run outside the lock.
// Callers must hold s.mu.
func (s *SessionService) snapshotSubs() []func(*models.Account) {
	subs := make([]func(*models.Account), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}
