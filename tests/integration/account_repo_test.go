//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgrierson/stronghold/internal/models"
	"github.com/kgrierson/stronghold/internal/repositories"
)

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()

	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer testDB.Teardown(ctx)

	repo := repositories.NewAccountRepository(testDB.DB)

	t.Run("GetByUsername is case-insensitive", func(t *testing.T) {
		require.NoError(t, testDB.CleanupTables(ctx))

		seeded, err := SeedAccount(ctx, testDB.Pool, "jdoe", "SecureP@ss123", models.AccessLevelBasic)
		require.NoError(t, err)

		found, err := repo.GetByUsername(ctx, "JDOE")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, found.ID)
		assert.Equal(t, "jdoe", found.Username)
	})

	t.Run("GetByUsername returns ErrNotFound for missing account", func(t *testing.T) {
		require.NoError(t, testDB.CleanupTables(ctx))

		_, err := repo.GetByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Create rejects duplicate username regardless of case", func(t *testing.T) {
		require.NoError(t, testDB.CleanupTables(ctx))

		_, err := SeedAccount(ctx, testDB.Pool, "jdoe", "SecureP@ss123", models.AccessLevelBasic)
		require.NoError(t, err)

		_, err = repo.Create(ctx, &models.Account{
			Username:     "JDoe",
			Email:        "other@example.com",
			PasswordHash: "hash",
			AccessLevel:  models.AccessLevelBasic,
			IsActive:     true,
		})
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("Save persists lockout state and bumps version", func(t *testing.T) {
		require.NoError(t, testDB.CleanupTables(ctx))

		account, err := SeedAccount(ctx, testDB.Pool, "jdoe", "SecureP@ss123", models.AccessLevelBasic)
		require.NoError(t, err)

		end := time.Now().Add(30 * time.Minute).UTC().Truncate(time.Microsecond)
		reason := "Maximum failed login attempts exceeded"
		account.FailedLoginAttempts = 5
		account.LockoutEnd = &end
		account.LockoutReason = &reason

		startVersion := account.Version
		require.NoError(t, repo.Save(ctx, account))
		assert.Equal(t, startVersion+1, account.Version)

		reloaded, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, reloaded.FailedLoginAttempts)
		require.NotNil(t, reloaded.LockoutEnd)
		assert.WithinDuration(t, end, *reloaded.LockoutEnd, time.Second)
		require.NotNil(t, reloaded.LockoutReason)
		assert.Equal(t, reason, *reloaded.LockoutReason)
	})

	t.Run("Save detects lost update", func(t *testing.T) {
		require.NoError(t, testDB.CleanupTables(ctx))

		seeded, err := SeedAccount(ctx, testDB.Pool, "jdoe", "SecureP@ss123", models.AccessLevelBasic)
		require.NoError(t, err)

		first, err := repo.GetByID(ctx, seeded.ID)
		require.NoError(t, err)
		second, err := repo.GetByID(ctx, seeded.ID)
		require.NoError(t, err)

		first.FailedLoginAttempts = 1
		require.NoError(t, repo.Save(ctx, first))

		// Stale version: the concurrent writer must lose, not overwrite.
		second.FailedLoginAttempts = 1
		assert.ErrorIs(t, repo.Save(ctx, second), models.ErrConflict)

		reloaded, err := repo.GetByID(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, reloaded.FailedLoginAttempts)
	})

	t.Run("Exists reflects table state", func(t *testing.T) {
		require.NoError(t, testDB.CleanupTables(ctx))

		exists, err := repo.Exists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = SeedAccount(ctx, testDB.Pool, "jdoe", "SecureP@ss123", models.AccessLevelAdministrator)
		require.NoError(t, err)

		exists, err = repo.Exists(ctx)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
