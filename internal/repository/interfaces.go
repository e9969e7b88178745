package repository

import (
	"context"

	"github.com/attaboy/trustplane/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// RuleRepository provides access to the policy_rules catalog table.
type RuleRepository interface {
	// ListEnabled returns all enabled rules ordered by priority then
	// insertion order, ready to build a catalog from.
	ListEnabled(ctx context.Context, db DBTX) ([]domain.PolicyRule, error)
}

// AuditRepository provides access to the audit_events table.
type AuditRepository interface {
	// Insert appends one audit record.
	Insert(ctx context.Context, db DBTX, event domain.AuditEvent) error

	// ListRecent returns the newest audit records, newest first.
	ListRecent(ctx context.Context, db DBTX, limit int) ([]domain.AuditEvent, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the
	// audit record it accompanies).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events for the relay.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]OutboxRow, error)

	// MarkPublished marks events as published.
	MarkPublished(ctx context.Context, db DBTX, seqIDs []int64) error
}

// OutboxRow is an outbox event with its relay bookkeeping columns.
type OutboxRow struct {
	SeqID int64
	Draft domain.OutboxDraft
}
