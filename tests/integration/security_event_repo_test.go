//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgrierson/stronghold/internal/models"
	"github.com/kgrierson/stronghold/internal/repositories"
)

func TestSecurityEventRepository(t *testing.T) {
	ctx := context.Background()

	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer testDB.Teardown(ctx)

	repo := repositories.NewSecurityEventRepository(testDB.DB)

	t.Run("Create assigns id and timestamp", func(t *testing.T) {
		require.NoError(t, testDB.CleanupTables(ctx))

		account, err := SeedAccount(ctx, testDB.Pool, "jdoe", "SecureP@ss123", models.AccessLevelBasic)
		require.NoError(t, err)

		created, err := repo.Create(ctx, &models.SecurityEvent{
			AccountID: account.ID,
			EventType: models.EventLoginFailed,
			Details:   "Failed login attempt 1 of 5",
		})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
	})

	t.Run("ListByAccount returns newest first with pagination", func(t *testing.T) {
		require.NoError(t, testDB.CleanupTables(ctx))

		account, err := SeedAccount(ctx, testDB.Pool, "jdoe", "SecureP@ss123", models.AccessLevelBasic)
		require.NoError(t, err)

		for i := 1; i <= 5; i++ {
			_, err := repo.Create(ctx, &models.SecurityEvent{
				AccountID: account.ID,
				EventType: models.EventLoginFailed,
				Details:   fmt.Sprintf("Failed login attempt %d of 5", i),
			})
			require.NoError(t, err)
		}

		events, err := repo.ListByAccount(ctx, account.ID, 3, 0)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, "Failed login attempt 5 of 5", events[0].Details)

		rest, err := repo.ListByAccount(ctx, account.ID, 3, 3)
		require.NoError(t, err)
		assert.Len(t, rest, 2)
	})

	t.Run("ListByAccount scopes to one account", func(t *testing.T) {
		require.NoError(t, testDB.CleanupTables(ctx))

		first, err := SeedAccount(ctx, testDB.Pool, "first", "SecureP@ss123", models.AccessLevelBasic)
		require.NoError(t, err)
		second, err := SeedAccount(ctx, testDB.Pool, "second", "SecureP@ss123", models.AccessLevelBasic)
		require.NoError(t, err)

		_, err = repo.Create(ctx, &models.SecurityEvent{
			AccountID: first.ID,
			EventType: models.EventLoginSuccess,
			Details:   "Successful login",
		})
		require.NoError(t, err)

		events, err := repo.ListByAccount(ctx, second.ID, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
