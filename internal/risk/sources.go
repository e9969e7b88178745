package risk

import (
	"context"
	"time"

	"github.com/attaboy/trustplane/internal/domain"
)

// LocationAssessment is the result of a geo-IP lookup. Score is the
// location risk contribution, clamped to [0,1] by the source.
type LocationAssessment struct {
	Country    string  `json:"country"`
	City       string  `json:"city,omitempty"`
	Anomalous  bool    `json:"anomalous"`
	KnownProxy bool    `json:"known_proxy"`
	Score      float64 `json:"score"`
}

// DeviceAssessment is the result of a device trust lookup. Score is the
// device risk contribution, clamped to [0,1] by the source.
type DeviceAssessment struct {
	Managed   bool    `json:"managed"`
	Compliant bool    `json:"compliant"`
	Score     float64 `json:"score"`
}

// LocationSource resolves a network origin to a location risk assessment.
type LocationSource interface {
	Lookup(ctx context.Context, ip string) (LocationAssessment, error)
}

// DeviceTrustSource resolves a device id to a trust assessment.
type DeviceTrustSource interface {
	Trust(ctx context.Context, deviceID string) (DeviceAssessment, error)
}

// BehaviorAnalyzer scores user behavior in [0,1]. Model internals live in
// the analytics collaborator, not here.
type BehaviorAnalyzer interface {
	Score(ctx context.Context, userID string, metrics domain.BehaviorMetrics) (float64, error)
}

// ResourceProfileSource resolves a resource id to its sensitivity profile.
// A resource with no configured profile gets a neutral profile with the
// default max risk threshold.
type ResourceProfileSource interface {
	Profile(ctx context.Context, resourceID string) (domain.ResourceProfile, error)
}

// Evaluator is the scoring contract consumed by the policy engine and the
// session monitor.
type Evaluator interface {
	Evaluate(ctx context.Context, factors domain.RiskFactors) (domain.RiskScore, error)
}

// TimeOfDayScore is the pure, local time factor. Business hours carry the
// least risk, late night the most.
func TimeOfDayScore(t time.Time) float64 {
	hour := t.Hour()
	switch {
	case hour >= 8 && hour < 18:
		return 0.1
	case hour >= 23 || hour < 6:
		return 0.7
	default:
		return 0.3
	}
}
