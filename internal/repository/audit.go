package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/attaboy/trustplane/internal/domain"
)

// PgAuditRepository implements AuditRepository against audit_events.
type PgAuditRepository struct{}

// NewPgAuditRepository creates the audit repository.
func NewPgAuditRepository() *PgAuditRepository { return &PgAuditRepository{} }

func (r *PgAuditRepository) Insert(ctx context.Context, db DBTX, event domain.AuditEvent) error {
	metadata := []byte(`{}`)
	if event.Metadata != nil {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
	}

	_, err := db.Exec(ctx, `
		INSERT INTO audit_events (event_type, user_id, session_id, resource_id, action, result, risk_score, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.EventType, event.UserID, event.SessionID, event.ResourceID,
		event.Action, event.Result, event.RiskScore, metadata, event.Timestamp)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (r *PgAuditRepository) ListRecent(ctx context.Context, db DBTX, limit int) ([]domain.AuditEvent, error) {
	rows, err := db.Query(ctx, `
		SELECT event_type, user_id, session_id, resource_id, action, result, risk_score, metadata, created_at
		FROM audit_events
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []domain.AuditEvent
	for rows.Next() {
		var (
			event    domain.AuditEvent
			metadata []byte
		)
		if err := rows.Scan(&event.EventType, &event.UserID, &event.SessionID, &event.ResourceID,
			&event.Action, &event.Result, &event.RiskScore, &metadata, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &event.Metadata)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
