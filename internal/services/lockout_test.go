package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockoutPolicy_Check_Allowed(t *testing.T) {
	policy := LockoutPolicy{MaxFailedAttempts: 5, LockoutDuration: 30 * time.Minute}
	now := time.Now()

	account := NewTestAccount(1, "jdoe", "jdoe@example.com")
	decision := policy.Check(now, account)
	assert.True(t, decision.Allowed)
	assert.Zero(t, decision.Remaining)
}

func TestLockoutPolicy_Check_Locked(t *testing.T) {
	policy := LockoutPolicy{MaxFailedAttempts: 5, LockoutDuration: 30 * time.Minute}
	now := time.Now()

	account := NewTestAccount(1, "jdoe", "jdoe@example.com")
	end := now.Add(10 * time.Minute)
	account.LockoutEnd = &end

	decision := policy.Check(now, account)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 10*time.Minute, decision.Remaining)
}

func TestLockoutPolicy_Check_ExpiredLockoutAllows(t *testing.T) {
	policy := LockoutPolicy{MaxFailedAttempts: 5, LockoutDuration: 30 * time.Minute}
	now := time.Now()

	account := NewTestAccount(1, "jdoe", "jdoe@example.com")
	end := now.Add(-1 * time.Minute)
	account.LockoutEnd = &end
	account.FailedLoginAttempts = 5

	decision := policy.Check(now, account)
	assert.True(t, decision.Allowed)
	// Expiry is evaluated, not erased: the field stays until a successful login.
	assert.NotNil(t, account.LockoutEnd)
}

func TestLockoutPolicy_RecordFailure_BelowMax(t *testing.T) {
	policy := LockoutPolicy{MaxFailedAttempts: 5, LockoutDuration: 30 * time.Minute}
	now := time.Now()

	for k := 0; k < 4; k++ {
		account := NewTestAccount(1, "jdoe", "jdoe@example.com")
		account.FailedLoginAttempts = k

		locked := policy.RecordFailure(now, account)

		assert.Equal(t, k+1, account.FailedLoginAttempts)
		if k+1 < 5 {
			assert.False(t, locked)
			assert.Nil(t, account.LockoutEnd)
			assert.Nil(t, account.LockoutReason)
		} else {
			assert.True(t, locked)
			assert.NotNil(t, account.LockoutEnd)
		}
	}
}

func TestLockoutPolicy_RecordFailure_TriggersLock(t *testing.T) {
	policy := LockoutPolicy{MaxFailedAttempts: 5, LockoutDuration: 30 * time.Minute}
	now := time.Now()

	account := NewTestAccount(1, "jdoe", "jdoe@example.com")
	account.FailedLoginAttempts = 4

	locked := policy.RecordFailure(now, account)

	assert.True(t, locked)
	assert.Equal(t, 5, account.FailedLoginAttempts)
	require.NotNil(t, account.LockoutEnd)
	assert.Equal(t, now.Add(30*time.Minute), *account.LockoutEnd)
	require.NotNil(t, account.LockoutReason)
	assert.Equal(t, LockoutReasonMaxAttempts, *account.LockoutReason)
}

func TestLockoutPolicy_RecordFailure_RelocksAfterExpiry(t *testing.T) {
	policy := LockoutPolicy{MaxFailedAttempts: 5, LockoutDuration: 30 * time.Minute}
	now := time.Now()

	// Counter already at max from a previous lockout that has expired.
	account := NewTestAccount(1, "jdoe", "jdoe@example.com")
	account.FailedLoginAttempts = 5
	stale := now.Add(-1 * time.Hour)
	account.LockoutEnd = &stale

	locked := policy.RecordFailure(now, account)

	assert.True(t, locked)
	assert.Equal(t, 6, account.FailedLoginAttempts)
	assert.Equal(t, now.Add(30*time.Minute), *account.LockoutEnd)
}

func TestRemainingMinutes(t *testing.T) {
	assert.Equal(t, 30, remainingMinutes(30*time.Minute))
	assert.Equal(t, 10, remainingMinutes(9*time.Minute+10*time.Second))
	assert.Equal(t, 1, remainingMinutes(20*time.Second))
	assert.Equal(t, 1, remainingMinutes(0))
}
