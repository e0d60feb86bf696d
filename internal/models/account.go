package models

import (
	"fmt"
	"strings"
	"time"
)

// AccessLevel is the ordered role assigned to an account.
// Administrator supersedes Supervisor, which supersedes Basic.
type AccessLevel int

const (
	AccessLevelBasic AccessLevel = iota + 1
	AccessLevelSupervisor
	AccessLevelAdministrator
)

func (l AccessLevel) String() string {
	switch l {
	case AccessLevelBasic:
		return "basic"
	case AccessLevelSupervisor:
		return "supervisor"
	case AccessLevelAdministrator:
		return "administrator"
	default:
		return fmt.Sprintf("unknown(%d)", int(l))
	}
}

// Valid reports whether l is one of the three defined levels.
func (l AccessLevel) Valid() bool {
	return l >= AccessLevelBasic && l <= AccessLevelAdministrator
}

// ParseAccessLevel converts a level name to an AccessLevel.
func ParseAccessLevel(s string) (AccessLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic":
		return AccessLevelBasic, nil
	case "supervisor":
		return AccessLevelSupervisor, nil
	case "administrator", "admin":
		return AccessLevelAdministrator, nil
	default:
		return 0, fmt.Errorf("unknown access level: %q", s)
	}
}

type Account struct {
	ID                  int64
	Username            string // unique, matched case-insensitively
	Email               string
	PasswordHash        string
	AccessLevel         AccessLevel
	IsActive            bool
	FailedLoginAttempts int
	LockoutEnd          *time.Time
	LockoutReason       *string
	SecurityStamp       *string // rotated on login and password change
	LastLoginAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Version             int64 // optimistic concurrency guard for the lockout counter
}
