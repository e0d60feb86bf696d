package logger

import (
	"context"
	"log/slog"
	"time"
)

// SecurityEvent is the slog-facing view of one security audit entry.
// AccountID 0 means no account could be resolved for the attempt.
type SecurityEvent struct {
	EventType string
	AccountID int64
	Details   string
	Success   bool
}

// AuditLogger writes structured security events to the application log.
// Persistent storage of the same events is a separate concern; this writer is
// the always-available half of the audit trail.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogSecurityEvent logs one security event. Failures and denials log at warn
// level so privilege misuse stands out in aggregated logs.
func (al *AuditLogger) LogSecurityEvent(ctx context.Context, event SecurityEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "security"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.AccountID != 0 {
		attrs = append(attrs, slog.Int64("account_id", event.AccountID))
	}
	if event.Details != "" {
		attrs = append(attrs, slog.String("details", event.Details))
	}

	level := slog.LevelWarn
	if event.Success {
		level = slog.LevelInfo
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}
