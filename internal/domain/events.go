package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NewAlertEvent creates an alert outbox event.
func NewAlertEvent(alert Alert) OutboxDraft {
	payload, _ := json.Marshal(alert)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateAlert,
		AggregateID:   alert.Component,
		EventType:     EventAlertRaised,
		PartitionKey:  alert.Component,
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
