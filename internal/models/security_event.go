package models

import (
	"time"

	"github.com/google/uuid"
)

// Security event types recorded by the audit trail
const (
	EventLoginFailed          = "LOGIN_FAILED"
	EventLoginBlocked         = "LOGIN_BLOCKED"
	EventLoginSuccess         = "LOGIN_SUCCESS"
	EventAccountLocked        = "ACCOUNT_LOCKED"
	EventPasswordChangeFailed = "PASSWORD_CHANGE_FAILED"
	EventPasswordChanged      = "PASSWORD_CHANGED"
)

// SecurityEvent is one entry in the security audit trail. AccountID is zero
// when no account could be resolved (e.g. login with an unknown username).
type SecurityEvent struct {
	ID        uuid.UUID
	AccountID int64
	EventType string
	Details   string
	CreatedAt time.Time
}
