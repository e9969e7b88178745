package domain

import (
	"context"
	"time"
)

// AuditEvent is the record handed to the audit sink. The core awaits the
// sink before returning a decision so the record is durably queued first.
type AuditEvent struct {
	EventType  EventType      `json:"event_type"`
	UserID     string         `json:"user_id,omitempty"`
	SessionID  string         `json:"session_id,omitempty"`
	ResourceID string         `json:"resource_id,omitempty"`
	Action     string         `json:"action,omitempty"`
	Result     string         `json:"result,omitempty"`
	RiskScore  float64        `json:"risk_score"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// AlertSeverity ranks alerts sent to the alert sink.
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// Alert is the record handed to the alert sink.
type Alert struct {
	Severity  AlertSeverity  `json:"severity"`
	Component string         `json:"component"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RaisedAt  time.Time      `json:"raised_at"`
}

// AuditSink durably queues audit records. Implementations live outside the
// core; the core only awaits the call.
type AuditSink interface {
	LogEvent(ctx context.Context, event AuditEvent) error
}

// AlertSink delivers alerts to operators.
type AlertSink interface {
	SendAlert(ctx context.Context, alert Alert) error
}
