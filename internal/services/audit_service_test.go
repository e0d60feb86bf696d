package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgrierson/stronghold/internal/models"
	pkglogger "github.com/kgrierson/stronghold/pkg/logger"
)

func newTestAuditService(repo *MockSecurityEventRepository) *AuditService {
	return NewAuditService(repo, pkglogger.NewAuditLogger(slog.Default()), slog.Default())
}

func TestAuditService_RecordSecurityEvent_Persists(t *testing.T) {
	repo := &MockSecurityEventRepository{}
	svc := newTestAuditService(repo)

	svc.RecordSecurityEvent(context.Background(), 42, models.EventLoginFailed, "Failed login attempt 1 of 5")

	require.Len(t, repo.CreatedEvents, 1)
	event := repo.CreatedEvents[0]
	assert.Equal(t, int64(42), event.AccountID)
	assert.Equal(t, models.EventLoginFailed, event.EventType)
	assert.Equal(t, "Failed login attempt 1 of 5", event.Details)
}

func TestAuditService_RecordSecurityEvent_SwallowsPersistenceFailure(t *testing.T) {
	repo := &MockSecurityEventRepository{
		CreateFunc: func(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := newTestAuditService(repo)

	// Must not panic or surface the error; the log is the fallback record.
	svc.RecordSecurityEvent(context.Background(), 42, models.EventLoginSuccess, "Successful login")
}

func TestAuditService_GetAccountTrail_ClampsLimit(t *testing.T) {
	var gotLimit, gotOffset int
	repo := &MockSecurityEventRepository{
		ListByAccountFunc: func(ctx context.Context, accountID int64, limit, offset int) ([]*models.SecurityEvent, error) {
			gotLimit, gotOffset = limit, offset
			return []*models.SecurityEvent{}, nil
		},
	}
	svc := newTestAuditService(repo)

	_, err := svc.GetAccountTrail(context.Background(), 1, 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 50, gotLimit)
	assert.Equal(t, 0, gotOffset)

	_, err = svc.GetAccountTrail(context.Background(), 1, 500, 10)
	require.NoError(t, err)
	assert.Equal(t, 50, gotLimit)
	assert.Equal(t, 10, gotOffset)

	_, err = svc.GetAccountTrail(context.Background(), 1, 25, 0)
	require.NoError(t, err)
	assert.Equal(t, 25, gotLimit)
}

func TestEventIsSuccess(t *testing.T) {
	assert.True(t, eventIsSuccess(models.EventLoginSuccess))
	assert.True(t, eventIsSuccess(models.EventPasswordChanged))
	assert.False(t, eventIsSuccess(models.EventLoginFailed))
	assert.False(t, eventIsSuccess(models.EventLoginBlocked))
	assert.False(t, eventIsSuccess(models.EventAccountLocked))
	assert.False(t, eventIsSuccess(models.EventPasswordChangeFailed))
}
