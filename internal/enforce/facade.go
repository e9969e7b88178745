package enforce

import (
	"context"
	"log/slog"

	"github.com/attaboy/trustplane/internal/domain"
	"github.com/attaboy/trustplane/internal/monitor"
	"github.com/attaboy/trustplane/internal/policy"
)

// Facade routes access requests to the policy decision engine and
// session-affecting outcomes to the session monitor.
type Facade struct {
	decisions *policy.Engine
	sessions  *monitor.Monitor
	logger    *slog.Logger
}

// New creates the enforcement facade.
func New(decisions *policy.Engine, sessions *monitor.Monitor, logger *slog.Logger) *Facade {
	return &Facade{decisions: decisions, sessions: sessions, logger: logger}
}

// Authorize evaluates the access request. A denied decision for a
// monitored session terminates that session; a trust decision that bad
// must not leave the session live.
func (f *Facade) Authorize(ctx context.Context, access domain.AccessContext) (domain.PolicyDecision, error) {
	decision, err := f.decisions.EvaluateAccess(ctx, access)
	if err != nil {
		return domain.PolicyDecision{}, err
	}

	if decision.Effect == domain.DecisionDenied && access.SessionID != "" {
		if err := f.sessions.TerminateSession(ctx, access.SessionID, domain.ReasonAccessDenied); err != nil {
			f.logger.Error("session termination after denial failed",
				"session_id", access.SessionID,
				"error", err,
			)
		}
	}

	return decision, nil
}
