package domain

import "time"

// SessionStatus is the lifecycle state of a monitored session.
type SessionStatus string

const (
	SessionActive     SessionStatus = "active"
	SessionSuspended  SessionStatus = "suspended"
	SessionTerminated SessionStatus = "terminated"
)

// Termination and suspension reasons recorded in audit events.
const (
	ReasonHighRisk     = "high_risk"
	ReasonAccessDenied = "access_denied"
	ReasonRequested    = "requested"
)

// MonitoredSession is owned exclusively by the session monitor while it is
// monitored. Other components observe it through read-only snapshots.
type MonitoredSession struct {
	SessionID        string        `json:"session_id"`
	UserID           string        `json:"user_id"`
	DeviceID         string        `json:"device_id"`
	SourceIP         string        `json:"source_ip"`
	BaselineRisk     float64       `json:"baseline_risk"`
	CurrentRisk      float64       `json:"current_risk"`
	Status           SessionStatus `json:"status"`
	RequiresReauth   bool          `json:"requires_reauth"`
	StartedAt        time.Time     `json:"started_at"`
	LastEvaluatedAt  time.Time     `json:"last_evaluated_at"`
	EvalInterval     time.Duration `json:"eval_interval"`
	TerminatedReason string        `json:"terminated_reason,omitempty"`
}

// CanTransition reports whether the status machine allows from → to.
// terminated is absorbing; suspended can recover to active or end.
func CanTransition(from, to SessionStatus) bool {
	switch from {
	case SessionActive:
		return to == SessionSuspended || to == SessionTerminated
	case SessionSuspended:
		return to == SessionActive || to == SessionTerminated
	default:
		return false
	}
}
