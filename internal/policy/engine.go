package policy

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/attaboy/trustplane/internal/domain"
	"github.com/attaboy/trustplane/internal/risk"
)

const (
	// hardFloorThreshold force-adds MFA and device compliance regardless
	// of the rule catalog.
	hardFloorThreshold = 0.8

	// DefaultGrantWindow is the base validity of a conditional grant
	// before risk scaling.
	DefaultGrantWindow = 4 * time.Hour

	// grantWindowFloor keeps a conditional grant at no less than 20% of
	// the base window even at maximum risk.
	grantWindowFloor = 0.2
)

// Engine turns a risk score plus request context into an access decision.
type Engine struct {
	risk        risk.Evaluator
	resources   risk.ResourceProfileSource
	audit       domain.AuditSink
	alerts      domain.AlertSink
	logger      *slog.Logger
	grantWindow time.Duration

	catalog atomic.Pointer[Catalog]
}

// NewEngine creates a decision engine over the given catalog. The catalog
// is read-only; Reload swaps in a replacement atomically.
func NewEngine(
	evaluator risk.Evaluator,
	resources risk.ResourceProfileSource,
	catalog *Catalog,
	audit domain.AuditSink,
	alerts domain.AlertSink,
	logger *slog.Logger,
) *Engine {
	e := &Engine{
		risk:        evaluator,
		resources:   resources,
		audit:       audit,
		alerts:      alerts,
		logger:      logger,
		grantWindow: DefaultGrantWindow,
	}
	e.catalog.Store(catalog)
	return e
}

// Reload atomically replaces the rule catalog. In-flight evaluations keep
// the catalog they started with.
func (e *Engine) Reload(catalog *Catalog) {
	e.catalog.Store(catalog)
}

// Catalog returns the current rule catalog.
func (e *Engine) Catalog() *Catalog { return e.catalog.Load() }

// EvaluateAccess computes the risk score for the request, applies every
// matching rule plus the hard floor, and returns the decision. The
// decision is audited before it is returned; a denied decision also
// raises a medium-severity alert.
func (e *Engine) EvaluateAccess(ctx context.Context, access domain.AccessContext) (domain.PolicyDecision, error) {
	if access.Timestamp.IsZero() {
		access.Timestamp = time.Now()
	}

	score, err := e.risk.Evaluate(ctx, access.Factors())
	if err != nil {
		return domain.PolicyDecision{}, domain.ErrPolicyEvaluation(err)
	}

	applicable := e.catalog.Load().Applicable(score.Total, access.Timestamp)

	controls := make(map[string]struct{})
	ruleIDs := make([]string, 0, len(applicable))
	var parts []string
	for _, r := range applicable {
		for _, a := range r.Actions {
			controls[a] = struct{}{}
		}
		ruleIDs = append(ruleIDs, r.ID)
		parts = append(parts, r.Describe())
	}

	// Hard floor, independent of the rule catalog.
	if score.Total > hardFloorThreshold {
		controls[domain.ControlRequireMFA] = struct{}{}
		controls[domain.ControlRequireDeviceCompliance] = struct{}{}
		parts = append(parts, fmt.Sprintf("risk %.2f above hard floor %.2f: mfa and device compliance enforced", score.Total, hardFloorThreshold))
	}

	profile, err := e.resources.Profile(ctx, access.ResourceID)
	if err != nil {
		return domain.PolicyDecision{}, domain.ErrPolicyEvaluation(err)
	}
	maxThreshold := profile.MaxRiskThreshold
	if maxThreshold == 0 {
		maxThreshold = domain.DefaultMaxRiskThreshold
	}

	decision := domain.PolicyDecision{
		RiskScore:        score.Total,
		AppliedRuleIDs:   ruleIDs,
		RequiredControls: sortedControls(controls),
		DecidedAt:        time.Now(),
	}

	switch {
	case score.Total > maxThreshold:
		decision.Effect = domain.DecisionDenied
		parts = append(parts, fmt.Sprintf("risk %.2f exceeds resource threshold %.2f", score.Total, maxThreshold))
	case len(decision.RequiredControls) == 0:
		decision.Allowed = true
		decision.Effect = domain.DecisionGranted
		parts = append(parts, fmt.Sprintf("risk %.2f within resource threshold %.2f, no controls required", score.Total, maxThreshold))
	default:
		decision.Allowed = true
		decision.Effect = domain.DecisionConditional
		expiry := access.Timestamp.Add(scaledGrantWindow(e.grantWindow, score.Total))
		decision.ExpirationTime = &expiry
		parts = append(parts, fmt.Sprintf("access conditional on %s until %s", strings.Join(decision.RequiredControls, ", "), expiry.UTC().Format(time.RFC3339)))
	}
	decision.Explanation = strings.Join(parts, "; ")

	// The decision is never returned before its audit record is queued.
	if err := e.audit.LogEvent(ctx, domain.AuditEvent{
		EventType:  accessEventType(decision.Effect),
		UserID:     access.UserID,
		SessionID:  access.SessionID,
		ResourceID: access.ResourceID,
		Action:     access.Action,
		Result:     string(decision.Effect),
		RiskScore:  score.Total,
		Metadata: map[string]any{
			"applied_rule_ids":  decision.AppliedRuleIDs,
			"required_controls": decision.RequiredControls,
		},
		Timestamp: time.Now(),
	}); err != nil {
		return domain.PolicyDecision{}, domain.ErrInternal("audit log failed", err)
	}

	if decision.Effect == domain.DecisionDenied {
		if err := e.alerts.SendAlert(ctx, domain.Alert{
			Severity:  domain.SeverityMedium,
			Component: "policy_engine",
			Message:   fmt.Sprintf("access to %s denied for user %s", access.ResourceID, access.UserID),
			Details: map[string]any{
				"user_id":     access.UserID,
				"resource_id": access.ResourceID,
				"risk_score":  score.Total,
			},
			RaisedAt: time.Now(),
		}); err != nil {
			e.logger.Error("denied-access alert failed", "user_id", access.UserID, "error", err)
		}
	}

	e.logger.Info("access decision",
		"user_id", access.UserID,
		"resource_id", access.ResourceID,
		"effect", decision.Effect,
		"risk_score", score.Total,
		"rules_applied", len(ruleIDs),
	)

	return decision, nil
}

// scaledGrantWindow shortens the grant window as risk rises, with a floor
// at 20% of the base window.
func scaledGrantWindow(base time.Duration, total float64) time.Duration {
	factor := 1 - total
	if factor < grantWindowFloor {
		factor = grantWindowFloor
	}
	return time.Duration(float64(base) * factor)
}

func sortedControls(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func accessEventType(effect domain.DecisionEffect) domain.EventType {
	switch effect {
	case domain.DecisionDenied:
		return domain.EventAccessDenied
	case domain.DecisionConditional:
		return domain.EventAccessConditional
	default:
		return domain.EventAccessGranted
	}
}
