package services

import (
	"math"
	"time"

	"github.com/kgrierson/stronghold/internal/models"
)

// LockoutReasonMaxAttempts is recorded on the account when the lock triggers.
const LockoutReasonMaxAttempts = "Maximum failed login attempts exceeded"

// LockoutPolicy decides whether a login attempt may proceed and applies the
// failure transition. Check never mutates; RecordFailure mutates the account
// in memory and leaves persistence to the caller.
type LockoutPolicy struct {
	MaxFailedAttempts int
	LockoutDuration   time.Duration
}

// LockoutDecision is the outcome of checking an account's lockout state.
// Remaining is positive only when the attempt is blocked.
type LockoutDecision struct {
	Allowed   bool
	Remaining time.Duration
}

// Check evaluates the account's lockout state at the given instant. An
// expired lockoutEnd is not cleared here; expiry is evaluated, and the field
// is erased only by a successful login or an administrative reset.
func (p LockoutPolicy) Check(now time.Time, account *models.Account) LockoutDecision {
	if account.LockoutEnd != nil && account.LockoutEnd.After(now) {
		return LockoutDecision{Remaining: account.LockoutEnd.Sub(now)}
	}
	return LockoutDecision{Allowed: true}
}

// RecordFailure increments the failure counter and, once the counter reaches
// the maximum, sets lockoutEnd = now + duration and the lockout reason.
// Returns whether the lock was set by this call.
func (p LockoutPolicy) RecordFailure(now time.Time, account *models.Account) bool {
	account.FailedLoginAttempts++

	if account.FailedLoginAttempts >= p.MaxFailedAttempts {
		end := now.Add(p.LockoutDuration)
		reason := LockoutReasonMaxAttempts
		account.LockoutEnd = &end
		account.LockoutReason = &reason
		return true
	}

	return false
}

// remainingMinutes rounds a lockout remainder up to whole minutes so a locked
// account is never told to retry in "0 minutes".
func remainingMinutes(d time.Duration) int {
	minutes := int(math.Ceil(d.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
