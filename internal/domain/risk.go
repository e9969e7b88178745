package domain

import "time"

// Factor names the five risk signal categories.
type Factor string

const (
	FactorLocation Factor = "location"
	FactorDevice   Factor = "device"
	FactorBehavior Factor = "behavior"
	FactorTime     Factor = "time"
	FactorResource Factor = "resource"
)

// Factor weights. Fixed at build time; they always sum to 1.0 so a total
// built from clamped factor scores stays in [0,1].
const (
	WeightLocation = 0.30
	WeightDevice   = 0.20
	WeightBehavior = 0.25
	WeightTime     = 0.15
	WeightResource = 0.10
)

// RiskBand classifies a total risk score into a severity band.
type RiskBand string

const (
	BandLow      RiskBand = "low"
	BandMedium   RiskBand = "medium"
	BandHigh     RiskBand = "high"
	BandCritical RiskBand = "critical"
)

// BandFor maps a total risk score to its severity band. Every component
// that classifies severity from a risk score must go through this
// function; there is no second threshold table.
func BandFor(total float64) RiskBand {
	switch {
	case total > 0.9:
		return BandCritical
	case total > 0.7:
		return BandHigh
	case total > 0.4:
		return BandMedium
	default:
		return BandLow
	}
}

// BehaviorMetrics is a snapshot of session activity fed to the behavior
// analyzer alongside the user id.
type BehaviorMetrics struct {
	RequestVelocity  int  `json:"request_velocity"`
	AuthFailures     int  `json:"auth_failures"`
	UnusualResources bool `json:"unusual_resources"`
	OffHoursActivity bool `json:"off_hours_activity"`
}

// RiskFactors is the immutable input bundle for one risk evaluation.
type RiskFactors struct {
	UserID     string          `json:"user_id"`
	SourceIP   string          `json:"source_ip"`
	DeviceID   string          `json:"device_id"`
	Timestamp  time.Time       `json:"timestamp"`
	ResourceID string          `json:"resource_id"`
	Behavior   BehaviorMetrics `json:"behavior"`
}

// RiskScore is the output of one evaluation. Each evaluation produces a
// fresh value; nothing mutates a RiskScore after it is built.
type RiskScore struct {
	Total           float64            `json:"total"`
	Breakdown       map[Factor]float64 `json:"breakdown"`
	Recommendations []string           `json:"recommendations,omitempty"`
	EvaluatedAt     time.Time          `json:"evaluated_at"`
}

// Band returns the severity band for the total.
func (s RiskScore) Band() RiskBand { return BandFor(s.Total) }

// CombineFactors computes the fixed convex combination of the breakdown.
// Precondition: every factor score is already clamped to [0,1] by its
// producing source; out-of-range inputs are a contract violation.
func CombineFactors(b map[Factor]float64) float64 {
	return WeightLocation*b[FactorLocation] +
		WeightDevice*b[FactorDevice] +
		WeightBehavior*b[FactorBehavior] +
		WeightTime*b[FactorTime] +
		WeightResource*b[FactorResource]
}
