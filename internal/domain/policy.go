package domain

import (
	"fmt"
	"time"
)

// Condition kinds supported by the rule catalog.
type ConditionKind string

const (
	CondRiskScore  ConditionKind = "risk_score"
	CondTimeWindow ConditionKind = "time_window"
)

// Comparison operators for risk_score conditions.
const (
	OpGT  = "gt"
	OpGTE = "gte"
	OpLT  = "lt"
	OpLTE = "lte"
	OpEQ  = "eq"
)

// Condition is one typed predicate inside a policy rule. All conditions of
// a rule must hold for the rule to apply.
type Condition struct {
	Kind     ConditionKind `json:"kind"`
	Operator string        `json:"operator,omitempty"`  // risk_score
	Value    float64       `json:"value,omitempty"`     // risk_score
	FromHour int           `json:"from_hour,omitempty"` // time_window, inclusive
	ToHour   int           `json:"to_hour,omitempty"`   // time_window, exclusive
	Outside  bool          `json:"outside,omitempty"`   // time_window: match outside the window
}

// Holds evaluates the condition against a risk total and wall-clock time.
// Unknown kinds never hold, so a rule with a future condition kind is
// inert rather than wrongly applied.
func (c Condition) Holds(total float64, now time.Time) bool {
	switch c.Kind {
	case CondRiskScore:
		switch c.Operator {
		case OpGT:
			return total > c.Value
		case OpGTE:
			return total >= c.Value
		case OpLT:
			return total < c.Value
		case OpLTE:
			return total <= c.Value
		case OpEQ:
			return total == c.Value
		}
		return false
	case CondTimeWindow:
		inside := hourInWindow(now.Hour(), c.FromHour, c.ToHour)
		if c.Outside {
			return !inside
		}
		return inside
	default:
		return false
	}
}

// hourInWindow handles windows that wrap midnight (e.g. 22 → 6).
func hourInWindow(hour, from, to int) bool {
	if from <= to {
		return hour >= from && hour < to
	}
	return hour >= from || hour < to
}

func (c Condition) describe() string {
	switch c.Kind {
	case CondRiskScore:
		return fmt.Sprintf("risk %s %.2f", c.Operator, c.Value)
	case CondTimeWindow:
		side := "inside"
		if c.Outside {
			side = "outside"
		}
		return fmt.Sprintf("%s hours %02d-%02d", side, c.FromHour, c.ToHour)
	default:
		return string(c.Kind)
	}
}

// Control tags attached to decisions.
const (
	ControlRequireMFA              = "require_mfa"
	ControlRequireDeviceCompliance = "require_device_compliance"
	ControlRequireReauth           = "require_reauthentication"
	ControlRestrictDownload        = "restrict_download"
)

// PolicyRule is one entry of the versioned, read-only rule catalog.
// Priority orders explanation text only; every applicable rule
// contributes and none short-circuits another.
type PolicyRule struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Conditions    []Condition `json:"conditions"`
	Actions       []string    `json:"actions"`
	RiskThreshold float64     `json:"risk_threshold"`
	Priority      int         `json:"priority"`
	Version       int         `json:"version"`
}

// Applies reports whether every condition of the rule holds.
func (r PolicyRule) Applies(total float64, now time.Time) bool {
	for _, c := range r.Conditions {
		if !c.Holds(total, now) {
			return false
		}
	}
	return true
}

// Describe renders the deterministic explanation fragment for an applied
// rule.
func (r PolicyRule) Describe() string {
	if len(r.Conditions) == 0 {
		return fmt.Sprintf("rule %q applied", r.Name)
	}
	s := fmt.Sprintf("rule %q applied (", r.Name)
	for i, c := range r.Conditions {
		if i > 0 {
			s += ", "
		}
		s += c.describe()
	}
	return s + ")"
}

// Decision effects.
type DecisionEffect string

const (
	DecisionGranted     DecisionEffect = "granted"
	DecisionDenied      DecisionEffect = "denied"
	DecisionConditional DecisionEffect = "conditional"
)

// AccessContext is the input to one access decision.
type AccessContext struct {
	UserID     string          `json:"user_id"`
	SessionID  string          `json:"session_id,omitempty"`
	DeviceID   string          `json:"device_id"`
	SourceIP   string          `json:"source_ip"`
	ResourceID string          `json:"resource_id"`
	Action     string          `json:"action"`
	Timestamp  time.Time       `json:"timestamp"`
	Behavior   BehaviorMetrics `json:"behavior"`
}

// Factors builds the immutable risk input bundle for this request.
func (c AccessContext) Factors() RiskFactors {
	return RiskFactors{
		UserID:     c.UserID,
		SourceIP:   c.SourceIP,
		DeviceID:   c.DeviceID,
		Timestamp:  c.Timestamp,
		ResourceID: c.ResourceID,
		Behavior:   c.Behavior,
	}
}

// PolicyDecision is the output of one access decision.
type PolicyDecision struct {
	Allowed          bool           `json:"allowed"`
	Effect           DecisionEffect `json:"effect"`
	RequiredControls []string       `json:"required_controls,omitempty"`
	RiskScore        float64        `json:"risk_score"`
	AppliedRuleIDs   []string       `json:"applied_rule_ids,omitempty"`
	Explanation      string         `json:"explanation"`
	ExpirationTime   *time.Time     `json:"expiration_time,omitempty"`
	DecidedAt        time.Time      `json:"decided_at"`
}

// ResourceProfile carries the per-resource policy configuration supplied
// by the resource sensitivity source.
type ResourceProfile struct {
	ResourceID       string  `json:"resource_id"`
	Sensitivity      float64 `json:"sensitivity"`        // [0,1]
	MaxRiskThreshold float64 `json:"max_risk_threshold"` // deny above this
}

// DefaultMaxRiskThreshold applies to resources with no configured profile.
const DefaultMaxRiskThreshold = 0.7
