package services

import (
	"context"
	"log/slog"

	"github.com/kgrierson/stronghold/internal/models"
	pkglogger "github.com/kgrierson/stronghold/pkg/logger"
)

// SecurityEventRepository defines the persistence half of the audit trail
type SecurityEventRepository interface {
	Create(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error)
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*models.SecurityEvent, error)
}

// AuditService records security events with a dual-write pattern: immediate
// slog output plus best-effort persistence. A storage failure is logged and
// swallowed so the audit trail can never fail an authentication path.
type AuditService struct {
	repo        SecurityEventRepository
	auditLogger *pkglogger.AuditLogger
	logger      *slog.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(repo SecurityEventRepository, auditLogger *pkglogger.AuditLogger, logger *slog.Logger) *AuditService {
	return &AuditService{
		repo:        repo,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// RecordSecurityEvent records one security event. AccountID 0 means the event
// could not be tied to an account (unknown username).
func (s *AuditService) RecordSecurityEvent(ctx context.Context, accountID int64, eventType, details string) {
	s.auditLogger.LogSecurityEvent(ctx, pkglogger.SecurityEvent{
		EventType: eventType,
		AccountID: accountID,
		Details:   details,
		Success:   eventIsSuccess(eventType),
	})

	event := &models.SecurityEvent{
		AccountID: accountID,
		EventType: eventType,
		Details:   details,
	}

	if _, err := s.repo.Create(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist security event",
			slog.String("event_type", eventType),
			slog.Int64("account_id", accountID),
			slog.Any("error", err),
		)
	}
}

// GetAccountTrail retrieves the recorded events for one account, newest first.
func (s *AuditService) GetAccountTrail(ctx context.Context, accountID int64, limit, offset int) ([]*models.SecurityEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListByAccount(ctx, accountID, limit, offset)
}

func eventIsSuccess(eventType string) bool {
	switch eventType {
	case models.EventLoginSuccess, models.EventPasswordChanged:
		return true
	default:
		return false
	}
}
