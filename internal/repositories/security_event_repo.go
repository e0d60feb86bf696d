package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kgrierson/stronghold/internal/database"
	"github.com/kgrierson/stronghold/internal/models"
)

type SecurityEventRepository struct {
	db *database.DB
}

func NewSecurityEventRepository(db *database.DB) *SecurityEventRepository {
	return &SecurityEventRepository{db: db}
}

func (r *SecurityEventRepository) Create(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error) {
	event.ID = uuid.New()
	event.CreatedAt = time.Now()

	query := `
		INSERT INTO security_events (id, account_id, event_type, details, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		event.ID, event.AccountID, event.EventType, event.Details, event.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return event, nil
}

// ListByAccount returns the most recent events for an account, newest first.
func (r *SecurityEventRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*models.SecurityEvent, error) {
	query := `
		SELECT id, account_id, event_type, details, created_at
		FROM security_events
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query security events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.SecurityEvent, 0)
	for rows.Next() {
		var event models.SecurityEvent
		if err := rows.Scan(&event.ID, &event.AccountID, &event.EventType, &event.Details, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan security event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return events, nil
}
