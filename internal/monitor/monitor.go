package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/attaboy/trustplane/internal/domain"
	"github.com/attaboy/trustplane/internal/risk"
)

// Tick policy constants. The combined score blends the full risk score
// with the live behavior signal.
const (
	combinedRiskWeight     = 0.6
	combinedBehaviorWeight = 0.4
	terminateThreshold     = 0.8
	suspendThreshold       = 0.6
	escalationDelta        = 0.3

	DefaultEvalInterval   = 30 * time.Second
	EscalatedEvalInterval = 15 * time.Second

	tickTimeout = 10 * time.Second
)

// Monitor owns the live-session registry and its timers. Sessions are
// created by StartMonitoring, mutated only by tick logic, and removed on
// termination or stop. Ticks for one session never overlap: the next tick
// is scheduled only after the previous one completes.
type Monitor struct {
	risk     risk.Evaluator
	behavior risk.BehaviorAnalyzer
	audit    domain.AuditSink
	alerts   domain.AlertSink
	logger   *slog.Logger

	baseInterval      time.Duration
	escalatedInterval time.Duration

	mu       sync.Mutex
	sessions map[string]*entry
	nextGen  uint64

	// afterFunc schedules a one-shot tick; replaced in tests.
	afterFunc func(d time.Duration, fn func()) *time.Timer
}

type entry struct {
	session domain.MonitoredSession
	timer   *time.Timer
	gen     uint64
}

// New creates a session monitor with the default tick intervals.
func New(
	evaluator risk.Evaluator,
	behavior risk.BehaviorAnalyzer,
	audit domain.AuditSink,
	alerts domain.AlertSink,
	logger *slog.Logger,
) *Monitor {
	return &Monitor{
		risk:              evaluator,
		behavior:          behavior,
		audit:             audit,
		alerts:            alerts,
		logger:            logger,
		baseInterval:      DefaultEvalInterval,
		escalatedInterval: EscalatedEvalInterval,
		sessions:          make(map[string]*entry),
		afterFunc:         time.AfterFunc,
	}
}

// StartMonitoring registers the session, captures its baseline risk and
// schedules the first tick. Returns without blocking on the first tick.
func (m *Monitor) StartMonitoring(ctx context.Context, s domain.MonitoredSession) error {
	if s.SessionID == "" {
		return domain.ErrValidation("session_id is required")
	}

	m.mu.Lock()
	if _, ok := m.sessions[s.SessionID]; ok {
		m.mu.Unlock()
		return domain.ErrDuplicateSession(s.SessionID)
	}

	now := time.Now()
	s.Status = domain.SessionActive
	s.BaselineRisk = s.CurrentRisk
	s.StartedAt = now
	s.LastEvaluatedAt = now
	s.EvalInterval = m.baseInterval

	m.nextGen++
	e := &entry{session: s, gen: m.nextGen}
	m.sessions[s.SessionID] = e
	e.timer = m.schedule(s.SessionID, e.gen, m.baseInterval)
	m.mu.Unlock()

	m.logger.Info("session monitoring started",
		"session_id", s.SessionID,
		"user_id", s.UserID,
		"baseline_risk", s.BaselineRisk,
	)

	return m.logAudit(ctx, domain.EventSessionStarted, s, "")
}

// StopMonitoring cancels the session's schedule and removes it from the
// live set. No-op if the session is unknown.
func (m *Monitor) StopMonitoring(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(m.sessions, sessionID)
	s := e.session
	m.mu.Unlock()

	m.logger.Info("session monitoring stopped", "session_id", sessionID)
	return m.logAudit(ctx, domain.EventSessionStopped, s, "")
}

// TerminateSession forces the session to terminated, cancels its schedule
// and removes it from the live set, emitting a termination audit record
// with the reason and final risk score. No-op if the session is unknown.
func (m *Monitor) TerminateSession(ctx context.Context, sessionID, reason string) error {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.session.Status = domain.SessionTerminated
	e.session.TerminatedReason = reason
	delete(m.sessions, sessionID)
	s := e.session
	m.mu.Unlock()

	m.logger.Warn("session terminated",
		"session_id", sessionID,
		"reason", reason,
		"final_risk", s.CurrentRisk,
	)
	return m.logAudit(ctx, domain.EventSessionTerminated, s, reason)
}

// ResumeSession transitions a suspended session back to active after a
// successful re-authentication. No-op for a session that is not
// suspended; unknown sessions are an error.
func (m *Monitor) ResumeSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return domain.ErrNotFound("session", sessionID)
	}
	if e.session.Status != domain.SessionSuspended {
		m.mu.Unlock()
		return nil
	}
	e.session.Status = domain.SessionActive
	e.session.RequiresReauth = false
	s := e.session
	m.mu.Unlock()

	m.logger.Info("session resumed", "session_id", sessionID)
	return m.logAudit(ctx, domain.EventSessionResumed, s, "")
}

// Snapshot returns a read-only copy of the monitored session.
func (m *Monitor) Snapshot(sessionID string) (domain.MonitoredSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[sessionID]
	if !ok {
		return domain.MonitoredSession{}, false
	}
	return e.session, true
}

// Snapshots returns read-only copies of all monitored sessions, ordered
// by session id.
func (m *Monitor) Snapshots() []domain.MonitoredSession {
	m.mu.Lock()
	out := make([]domain.MonitoredSession, 0, len(m.sessions))
	for _, e := range m.sessions {
		out = append(out, e.session)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}

// schedule arms a one-shot timer for the next tick. Caller holds m.mu.
func (m *Monitor) schedule(sessionID string, gen uint64, d time.Duration) *time.Timer {
	return m.afterFunc(d, func() { m.tick(sessionID, gen) })
}

// tick re-evaluates one session. It runs without holding the registry
// lock across any collaborator call, re-checks the registry before acting
// on the result, and schedules the next tick only when it completes, so
// ticks for one session are strictly sequential.
func (m *Monitor) tick(sessionID string, gen uint64) {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	if !ok || e.gen != gen {
		// Session removed or replaced between scheduling and firing.
		m.mu.Unlock()
		return
	}
	s := e.session
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	now := time.Now()
	score, err := m.risk.Evaluate(ctx, domain.RiskFactors{
		UserID:    s.UserID,
		SourceIP:  s.SourceIP,
		DeviceID:  s.DeviceID,
		Timestamp: now,
	})

	var behaviorScore float64
	if err == nil {
		behaviorScore, err = m.behavior.Score(ctx, s.UserID, domain.BehaviorMetrics{})
	}

	if err != nil {
		// Transient failure: alert, keep the session in its last known
		// state and stay on the existing schedule.
		m.logger.Error("session tick failed", "session_id", sessionID, "error", err)
		m.sendAlert(ctx, domain.Alert{
			Severity:  domain.SeverityHigh,
			Component: "session_monitor",
			Message:   fmt.Sprintf("risk evaluation failed for session %s", sessionID),
			Details:   map[string]any{"session_id": sessionID, "error": err.Error()},
			RaisedAt:  now,
		})
		m.rescheduleCurrent(sessionID, gen)
		return
	}

	combined := combinedRiskWeight*score.Total + combinedBehaviorWeight*behaviorScore

	m.mu.Lock()
	e, ok = m.sessions[sessionID]
	if !ok || e.gen != gen {
		// Removed while the evaluation was in flight; discard the result.
		m.mu.Unlock()
		return
	}

	switch {
	case combined > terminateThreshold:
		if e.timer != nil {
			e.timer.Stop()
		}
		e.session.CurrentRisk = combined
		e.session.LastEvaluatedAt = now
		e.session.Status = domain.SessionTerminated
		e.session.TerminatedReason = domain.ReasonHighRisk
		delete(m.sessions, sessionID)
		s = e.session
		m.mu.Unlock()

		m.logger.Warn("session terminated on tick",
			"session_id", sessionID,
			"combined_score", combined,
		)
		if err := m.logAudit(ctx, domain.EventSessionTerminated, s, domain.ReasonHighRisk); err != nil {
			m.logger.Error("termination audit failed", "session_id", sessionID, "error", err)
		}
		return

	case combined > suspendThreshold:
		transitioned := domain.CanTransition(e.session.Status, domain.SessionSuspended)
		if transitioned {
			e.session.Status = domain.SessionSuspended
			e.session.RequiresReauth = true
		}
		e.session.CurrentRisk = combined
		e.session.LastEvaluatedAt = now
		e.timer = m.schedule(sessionID, gen, e.session.EvalInterval)
		s = e.session
		m.mu.Unlock()

		if transitioned {
			m.logger.Warn("session suspended",
				"session_id", sessionID,
				"combined_score", combined,
			)
			m.sendAlert(ctx, domain.Alert{
				Severity:  domain.SeverityHigh,
				Component: "session_monitor",
				Message:   fmt.Sprintf("session %s suspended, re-authentication required", sessionID),
				Details: map[string]any{
					"session_id":     sessionID,
					"user_id":        s.UserID,
					"combined_score": combined,
					"baseline_risk":  s.BaselineRisk,
				},
				RaisedAt: now,
			})
		}
		return

	case combined-e.session.BaselineRisk > escalationDelta:
		// Escalate: replace the schedule with the shorter interval.
		// Repeated escalations just replace the timer again.
		e.session.EvalInterval = m.escalatedInterval
		e.session.CurrentRisk = combined
		e.session.LastEvaluatedAt = now
		if e.timer != nil {
			e.timer.Stop()
		}
		e.timer = m.schedule(sessionID, gen, m.escalatedInterval)
		m.mu.Unlock()

		m.logger.Info("session monitoring escalated",
			"session_id", sessionID,
			"combined_score", combined,
			"interval", m.escalatedInterval,
		)
		return

	default:
		e.session.CurrentRisk = combined
		e.session.LastEvaluatedAt = now
		e.timer = m.schedule(sessionID, gen, e.session.EvalInterval)
		m.mu.Unlock()
		return
	}
}

// rescheduleCurrent re-arms the timer at the session's current interval
// after a failed tick.
func (m *Monitor) rescheduleCurrent(sessionID string, gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[sessionID]
	if !ok || e.gen != gen {
		return
	}
	e.timer = m.schedule(sessionID, gen, e.session.EvalInterval)
}

func (m *Monitor) logAudit(ctx context.Context, eventType domain.EventType, s domain.MonitoredSession, reason string) error {
	event := domain.AuditEvent{
		EventType: eventType,
		UserID:    s.UserID,
		SessionID: s.SessionID,
		Result:    string(s.Status),
		RiskScore: s.CurrentRisk,
		Timestamp: time.Now(),
	}
	if reason != "" {
		event.Metadata = map[string]any{"reason": reason}
	}
	if err := m.audit.LogEvent(ctx, event); err != nil {
		return domain.ErrInternal("audit log failed", err)
	}
	return nil
}

func (m *Monitor) sendAlert(ctx context.Context, alert domain.Alert) {
	if err := m.alerts.SendAlert(ctx, alert); err != nil {
		m.logger.Error("alert delivery failed", "component", alert.Component, "error", err)
	}
}
