package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBandFor_Boundaries(t *testing.T) {
	assert.Equal(t, BandLow, BandFor(0))
	assert.Equal(t, BandLow, BandFor(0.4))
	assert.Equal(t, BandMedium, BandFor(0.41))
	assert.Equal(t, BandMedium, BandFor(0.7))
	assert.Equal(t, BandHigh, BandFor(0.71))
	assert.Equal(t, BandHigh, BandFor(0.9))
	assert.Equal(t, BandCritical, BandFor(0.91))
	assert.Equal(t, BandCritical, BandFor(1))
}

func TestCombineFactors_Weighting(t *testing.T) {
	total := CombineFactors(map[Factor]float64{
		FactorLocation: 0.1,
		FactorDevice:   0.2,
		FactorBehavior: 0.1,
		FactorTime:     0.1,
		FactorResource: 0.3,
	})
	// 0.30*0.1 + 0.20*0.2 + 0.25*0.1 + 0.15*0.1 + 0.10*0.3
	assert.InDelta(t, 0.14, total, 1e-9)
}

func TestCombineFactors_AllMaxStaysInRange(t *testing.T) {
	total := CombineFactors(map[Factor]float64{
		FactorLocation: 1,
		FactorDevice:   1,
		FactorBehavior: 1,
		FactorTime:     1,
		FactorResource: 1,
	})
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestCombineFactors_MissingFactorCountsAsZero(t *testing.T) {
	total := CombineFactors(map[Factor]float64{FactorLocation: 1})
	assert.InDelta(t, 0.30, total, 1e-9)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(SessionActive, SessionSuspended))
	assert.True(t, CanTransition(SessionActive, SessionTerminated))
	assert.True(t, CanTransition(SessionSuspended, SessionActive))
	assert.True(t, CanTransition(SessionSuspended, SessionTerminated))

	assert.False(t, CanTransition(SessionTerminated, SessionActive))
	assert.False(t, CanTransition(SessionTerminated, SessionSuspended))
	assert.False(t, CanTransition(SessionActive, SessionActive))
}

func TestCondition_RiskScoreOperators(t *testing.T) {
	now := time.Now()

	assert.True(t, Condition{Kind: CondRiskScore, Operator: OpGT, Value: 0.5}.Holds(0.6, now))
	assert.False(t, Condition{Kind: CondRiskScore, Operator: OpGT, Value: 0.5}.Holds(0.5, now))
	assert.True(t, Condition{Kind: CondRiskScore, Operator: OpGTE, Value: 0.5}.Holds(0.5, now))
	assert.True(t, Condition{Kind: CondRiskScore, Operator: OpLT, Value: 0.5}.Holds(0.4, now))
	assert.True(t, Condition{Kind: CondRiskScore, Operator: OpLTE, Value: 0.5}.Holds(0.5, now))
	assert.True(t, Condition{Kind: CondRiskScore, Operator: OpEQ, Value: 0.5}.Holds(0.5, now))

	// Unknown operator never holds.
	assert.False(t, Condition{Kind: CondRiskScore, Operator: "ne", Value: 0.5}.Holds(0.6, now))
}

func TestCondition_TimeWindow(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC)
	}

	business := Condition{Kind: CondTimeWindow, FromHour: 8, ToHour: 18}
	assert.True(t, business.Holds(0, at(8)))
	assert.True(t, business.Holds(0, at(17)))
	assert.False(t, business.Holds(0, at(18)))
	assert.False(t, business.Holds(0, at(3)))

	offHours := Condition{Kind: CondTimeWindow, FromHour: 8, ToHour: 18, Outside: true}
	assert.False(t, offHours.Holds(0, at(12)))
	assert.True(t, offHours.Holds(0, at(22)))
}

func TestCondition_TimeWindowWrapsMidnight(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC)
	}

	night := Condition{Kind: CondTimeWindow, FromHour: 22, ToHour: 6}
	assert.True(t, night.Holds(0, at(23)))
	assert.True(t, night.Holds(0, at(2)))
	assert.False(t, night.Holds(0, at(6)))
	assert.False(t, night.Holds(0, at(12)))
}

func TestCondition_UnknownKindNeverHolds(t *testing.T) {
	c := Condition{Kind: "device_posture"}
	assert.False(t, c.Holds(1.0, time.Now()))
}

func TestPolicyRule_AppliesRequiresAllConditions(t *testing.T) {
	rule := PolicyRule{
		ID:   "r1",
		Name: "high risk off hours",
		Conditions: []Condition{
			{Kind: CondRiskScore, Operator: OpGT, Value: 0.5},
			{Kind: CondTimeWindow, FromHour: 8, ToHour: 18, Outside: true},
		},
	}

	offHours := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	business := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, rule.Applies(0.6, offHours))
	assert.False(t, rule.Applies(0.6, business))
	assert.False(t, rule.Applies(0.4, offHours))
}

func TestPolicyRule_NoConditionsAlwaysApplies(t *testing.T) {
	rule := PolicyRule{ID: "r2", Name: "catch all"}
	assert.True(t, rule.Applies(0, time.Now()))
}

func TestAppError_HasCode(t *testing.T) {
	err := ErrDuplicateSession("sess-1")
	assert.True(t, HasCode(err, CodeDuplicateSession))
	assert.False(t, HasCode(err, CodePolicyEvaluation))
	assert.False(t, HasCode(nil, CodeDuplicateSession))
}
