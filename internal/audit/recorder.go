// Package audit implements the audit and alert sinks over Postgres with
// a transactional outbox; the relay ships queued events to Kafka.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/attaboy/trustplane/internal/domain"
	"github.com/attaboy/trustplane/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Recorder persists audit records and queues their outbox events in one
// transaction. LogEvent returning nil means the record is durably queued.
type Recorder struct {
	pool   *pgxpool.Pool
	audits repository.AuditRepository
	outbox repository.OutboxRepository
	logger *slog.Logger
}

// NewRecorder creates the audit sink.
func NewRecorder(pool *pgxpool.Pool, audits repository.AuditRepository, outbox repository.OutboxRepository, logger *slog.Logger) *Recorder {
	return &Recorder{pool: pool, audits: audits, outbox: outbox, logger: logger}
}

// LogEvent writes the audit row and its outbox event atomically.
func (r *Recorder) LogEvent(ctx context.Context, event domain.AuditEvent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.audits.Insert(ctx, tx, event); err != nil {
		return err
	}
	if err := r.outbox.Insert(ctx, tx, draftFor(event)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit audit tx: %w", err)
	}

	r.logger.Debug("audit event recorded", "event_type", event.EventType, "user_id", event.UserID)
	return nil
}

func draftFor(event domain.AuditEvent) domain.OutboxDraft {
	payload, _ := json.Marshal(event)

	aggregateType := domain.AggregateAccess
	aggregateID := event.UserID
	if strings.HasPrefix(string(event.EventType), "trust.session.") {
		aggregateType = domain.AggregateSession
		aggregateID = event.SessionID
	}

	return domain.OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     event.EventType,
		PartitionKey:  aggregateID,
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
