package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kgrierson/stronghold/internal/models"
	pkgauth "github.com/kgrierson/stronghold/pkg/auth"
	pkglogger "github.com/kgrierson/stronghold/pkg/logger"
)

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	Save(ctx context.Context, account *models.Account) error
}

// SecurityAuditor records security-relevant events; implemented by AuditService.
type SecurityAuditor interface {
	RecordSecurityEvent(ctx context.Context, accountID int64, eventType, details string)
}

// Config parameterizes the lockout policy and failure strictness. With
// StrictLookup the lookup requires an active account; with
// WrapPersistenceErrors repository failures surface as an opaque generic
// message instead of propagating raw (the lenient mode used for offline
// testing). CommandTimeout bounds every repository call.
type Config struct {
	MaxFailedAttempts     int
	LockoutDuration       time.Duration
	StrictLookup          bool
	WrapPersistenceErrors bool
	CommandTimeout        time.Duration
}

// Caller-facing messages. Lookup misses and password mismatches share one
// generic message so callers cannot probe which usernames exist.
const (
	MsgInvalidCredentials = "Invalid username or password"
	MsgLoginSuccessful    = "Login successful"
	MsgLoginError         = "An error occurred during login"
)

// LoginResult is the outcome of one login attempt. Account is populated only
// on success; Locked marks attempts rejected by the lockout window.
type LoginResult struct {
	Success bool
	Locked  bool
	Account *models.Account
	Message string
}

// AuthService handles credential verification, lockout bookkeeping, and the
// security-stamp rotation other layers rely on for session invalidation.
type AuthService struct {
	repo   AccountRepository
	audit  SecurityAuditor
	policy LockoutPolicy
	cfg    Config
	logger *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(repo AccountRepository, audit SecurityAuditor, cfg Config, logger *slog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		audit:  audit,
		policy: LockoutPolicy{MaxFailedAttempts: cfg.MaxFailedAttempts, LockoutDuration: cfg.LockoutDuration},
		cfg:    cfg,
		logger: logger,
	}
}

// Login runs one authentication attempt: lookup, lockout check, password
// check, then the success or failure state transition.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	account, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: account not found")
			s.audit.RecordSecurityEvent(ctx, 0, models.EventLoginFailed,
				fmt.Sprintf("Account not found: %s", username))
			return &LoginResult{Message: MsgInvalidCredentials}, nil
		}
		return s.loginPersistenceFailure(ctx, username, err)
	}

	if s.cfg.StrictLookup && !account.IsActive {
		// Indistinguishable from a missing account to the caller.
		s.logger.Info("login failed: account inactive", slog.Int64("account_id", account.ID))
		s.audit.RecordSecurityEvent(ctx, account.ID, models.EventLoginFailed, "Account is inactive")
		return &LoginResult{Message: MsgInvalidCredentials}, nil
	}

	now := time.Now()
	if decision := s.policy.Check(now, account); !decision.Allowed {
		s.audit.RecordSecurityEvent(ctx, account.ID, models.EventLoginBlocked,
			fmt.Sprintf("Attempted login while locked out. Remaining lockout time: %.1f minutes", decision.Remaining.Minutes()))
		return &LoginResult{
			Locked:  true,
			Message: fmt.Sprintf("Account is locked. Please try again in %d minutes", remainingMinutes(decision.Remaining)),
		}, nil
	}

	if !pkgauth.CheckPassword(account.PasswordHash, password) {
		lockTriggered := s.policy.RecordFailure(now, account)

		if err := s.repo.Save(ctx, account); err != nil {
			return s.loginPersistenceFailure(ctx, username, err)
		}

		if lockTriggered {
			s.audit.RecordSecurityEvent(ctx, account.ID, models.EventAccountLocked,
				fmt.Sprintf("Account locked due to %d failed login attempts", s.policy.MaxFailedAttempts))
		}
		s.audit.RecordSecurityEvent(ctx, account.ID, models.EventLoginFailed,
			fmt.Sprintf("Failed login attempt %d of %d", account.FailedLoginAttempts, s.policy.MaxFailedAttempts))

		return &LoginResult{Message: MsgInvalidCredentials}, nil
	}

	// Successful login: reset brute-force state and invalidate old sessions.
	account.FailedLoginAttempts = 0
	account.LockoutEnd = nil
	account.LockoutReason = nil
	account.LastLoginAt = &now
	stamp := pkgauth.GenerateSecurityStamp()
	account.SecurityStamp = &stamp

	if err := s.repo.Save(ctx, account); err != nil {
		return s.loginPersistenceFailure(ctx, username, err)
	}

	s.audit.RecordSecurityEvent(ctx, account.ID, models.EventLoginSuccess, "Successful login")
	s.logger.Info("login succeeded", slog.Int64("account_id", account.ID))

	return &LoginResult{Success: true, Account: account, Message: MsgLoginSuccessful}, nil
}

// ValidatePassword reports whether a candidate password satisfies the
// complexity policy. Pure; shared by the standalone policy check and
// ChangePassword.
func (s *AuthService) ValidatePassword(password string) bool {
	return pkgauth.ValidatePassword(password)
}

// ChangePassword verifies the current password, validates the new one, then
// re-hashes and rotates the security stamp. Lockout state is deliberately
// left alone: a locked account changing its password through another channel
// stays locked.
func (s *AuthService) ChangePassword(ctx context.Context, accountID int64, currentPassword, newPassword string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.audit.RecordSecurityEvent(ctx, accountID, models.EventPasswordChangeFailed, "Account not found")
			return false, nil
		}
		return false, s.persistenceError("password change lookup failed", accountID, err)
	}

	if !pkgauth.CheckPassword(account.PasswordHash, currentPassword) {
		s.audit.RecordSecurityEvent(ctx, accountID, models.EventPasswordChangeFailed, "Invalid current password")
		return false, nil
	}

	if !pkgauth.ValidatePassword(newPassword) {
		s.audit.RecordSecurityEvent(ctx, accountID, models.EventPasswordChangeFailed,
			"New password does not meet complexity requirements")
		return false, nil
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		return false, s.persistenceError("password hashing failed", accountID, err)
	}

	account.PasswordHash = hash
	stamp := pkgauth.GenerateSecurityStamp()
	account.SecurityStamp = &stamp

	if err := s.repo.Save(ctx, account); err != nil {
		return false, s.persistenceError("password change save failed", accountID, err)
	}

	s.audit.RecordSecurityEvent(ctx, accountID, models.EventPasswordChanged, "Password successfully changed")
	return true, nil
}

// UpdateLastLogin stamps lastLoginAt for an existing account and returns the
// new timestamp, or nil when the account does not exist. Best-effort: callers
// on the login success path log a warning on error instead of failing the
// login.
func (s *AuthService) UpdateLastLogin(ctx context.Context, accountID int64) (*time.Time, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, s.persistenceError("last login lookup failed", accountID, err)
	}

	now := time.Now()
	account.LastLoginAt = &now

	if err := s.repo.Save(ctx, account); err != nil {
		return nil, s.persistenceError("last login save failed", accountID, err)
	}

	return account.LastLoginAt, nil
}

func (s *AuthService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.CommandTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.CommandTimeout)
}

// loginPersistenceFailure handles a repository error during login. Full
// detail always goes to the log; what the caller sees depends on the
// strictness configuration.
func (s *AuthService) loginPersistenceFailure(ctx context.Context, username string, err error) (*LoginResult, error) {
	s.logger.ErrorContext(ctx, "login persistence failure",
		slog.String("username", pkglogger.SanitizedUsername(username)),
		slog.Any("error", err),
	)

	if s.cfg.WrapPersistenceErrors {
		return &LoginResult{Message: MsgLoginError}, models.ErrInternalServer
	}
	return nil, err
}

func (s *AuthService) persistenceError(msg string, accountID int64, err error) error {
	s.logger.Error(msg, slog.Int64("account_id", accountID), slog.Any("error", err))

	if s.cfg.WrapPersistenceErrors {
		return models.ErrInternalServer
	}
	return err
}
