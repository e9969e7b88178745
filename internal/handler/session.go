package handler

import (
	"net/http"
	"time"

	"github.com/attaboy/trustplane/internal/auth"
	"github.com/attaboy/trustplane/internal/domain"
	"github.com/attaboy/trustplane/internal/guard"
	"github.com/attaboy/trustplane/internal/monitor"
	"github.com/attaboy/trustplane/internal/risk"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionHandler handles session monitoring endpoints.
type SessionHandler struct {
	sessions  *monitor.Monitor
	evaluator risk.Evaluator
	pool      *pgxpool.Pool
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *monitor.Monitor, evaluator risk.Evaluator, pool *pgxpool.Pool) *SessionHandler {
	return &SessionHandler{sessions: sessions, evaluator: evaluator, pool: pool}
}

type startSessionRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	DeviceID  string `json:"device_id"`
	SourceIP  string `json:"source_ip"`
}

// Start handles POST /sessions — evaluates the baseline risk for the
// session's factors and registers it with the monitor.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.UserID == "" {
		RespondError(w, domain.ErrValidation("user_id is required"))
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	baseline, err := h.evaluator.Evaluate(r.Context(), domain.RiskFactors{
		UserID:    req.UserID,
		SourceIP:  req.SourceIP,
		DeviceID:  req.DeviceID,
		Timestamp: time.Now(),
	})
	if err != nil {
		RespondError(w, err)
		return
	}

	session := domain.MonitoredSession{
		SessionID:   req.SessionID,
		UserID:      req.UserID,
		DeviceID:    req.DeviceID,
		SourceIP:    req.SourceIP,
		CurrentRisk: baseline.Total,
	}
	if err := h.sessions.StartMonitoring(r.Context(), session); err != nil {
		RespondError(w, err)
		return
	}

	snapshot, _ := h.sessions.Snapshot(req.SessionID)
	RespondJSON(w, http.StatusCreated, snapshot)
}

// List handles GET /sessions — returns all monitored sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": h.sessions.Snapshots(),
	})
}

// Get handles GET /sessions/{id} — returns one monitored session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, ok := h.sessions.Snapshot(id)
	if !ok {
		RespondError(w, domain.ErrNotFound("session", id))
		return
	}
	RespondJSON(w, http.StatusOK, session)
}

// Stop handles DELETE /sessions/{id} — stops monitoring without marking
// the session as terminated. Idempotent.
func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.StopMonitoring(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"session_id": id, "status": "stopped"})
}

type terminateRequest struct {
	Reason string `json:"reason"`
}

// Terminate handles POST /sessions/{id}/terminate — forces termination
// with an explicit reason.
func (h *SessionHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req terminateRequest
	_ = DecodeJSON(r, &req)
	if req.Reason == "" {
		req.Reason = domain.ReasonRequested
	}

	if err := h.sessions.TerminateSession(r.Context(), id, req.Reason); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"session_id": id, "status": "terminated"})
}

// Resume handles POST /sessions/{id}/resume — transitions a suspended
// session back to active after the caller re-authenticates. The bearer
// token must carry the same session id; failed attempts count toward the
// re-auth lockout.
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := guard.CheckReauthLocked(r.Context(), h.pool, id); err != nil {
		RespondError(w, err)
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		RespondError(w, domain.ErrUnauthorized("no auth context"))
		return
	}
	if claims.SessionID != "" && claims.SessionID != id {
		guard.RecordReauthAttempt(r.Context(), h.pool, id, claims.Subject, remoteIP(r), false)
		RespondError(w, domain.ErrForbidden("token does not match session"))
		return
	}

	if err := h.sessions.ResumeSession(r.Context(), id); err != nil {
		guard.RecordReauthAttempt(r.Context(), h.pool, id, claims.Subject, remoteIP(r), false)
		RespondError(w, err)
		return
	}
	guard.RecordReauthAttempt(r.Context(), h.pool, id, claims.Subject, remoteIP(r), true)

	session, _ := h.sessions.Snapshot(id)
	RespondJSON(w, http.StatusOK, session)
}

func remoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
