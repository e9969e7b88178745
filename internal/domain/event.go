package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventSessionStarted    EventType = "trust.session.started"
	EventSessionSuspended  EventType = "trust.session.suspended"
	EventSessionResumed    EventType = "trust.session.resumed"
	EventSessionTerminated EventType = "trust.session.terminated"
	EventSessionStopped    EventType = "trust.session.stopped"
	EventMonitorEscalated  EventType = "trust.session.escalated"
	EventAccessGranted     EventType = "trust.access.granted"
	EventAccessDenied      EventType = "trust.access.denied"
	EventAccessConditional EventType = "trust.access.conditional"
	EventAlertRaised       EventType = "trust.alert.raised"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateSession AggregateType = "session"
	AggregateAccess  AggregateType = "access"
	AggregateAlert   AggregateType = "alert"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
