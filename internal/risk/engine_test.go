package risk

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/attaboy/trustplane/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLocation struct {
	score float64
	err   error
}

func (s stubLocation) Lookup(_ context.Context, _ string) (LocationAssessment, error) {
	return LocationAssessment{Country: "DE", Score: s.score}, s.err
}

type stubDevices struct {
	score float64
	err   error
}

func (s stubDevices) Trust(_ context.Context, _ string) (DeviceAssessment, error) {
	return DeviceAssessment{Managed: true, Score: s.score}, s.err
}

type stubBehavior struct {
	score float64
	err   error
}

func (s stubBehavior) Score(_ context.Context, _ string, _ domain.BehaviorMetrics) (float64, error) {
	return s.score, s.err
}

type stubResources struct {
	sensitivity float64
	err         error
}

func (s stubResources) Profile(_ context.Context, resourceID string) (domain.ResourceProfile, error) {
	return domain.ResourceProfile{ResourceID: resourceID, Sensitivity: s.sensitivity}, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func businessHours() time.Time {
	return time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
}

func TestEvaluate_CombinesWeightedFactors(t *testing.T) {
	engine := NewEngine(
		stubLocation{score: 0.2},
		stubDevices{score: 0.3},
		stubBehavior{score: 0.1},
		stubResources{sensitivity: 0.5},
		testLogger(),
	)

	score, err := engine.Evaluate(context.Background(), domain.RiskFactors{
		UserID:     "user-1",
		SourceIP:   "198.51.100.7",
		DeviceID:   "dev-1",
		ResourceID: "res-1",
		Timestamp:  businessHours(),
	})
	require.NoError(t, err)

	// 0.30*0.2 + 0.20*0.3 + 0.25*0.1 + 0.15*0.1 + 0.10*0.5
	assert.InDelta(t, 0.21, score.Total, 1e-9)
	assert.Equal(t, domain.BandLow, score.Band())
	assert.InDelta(t, 0.1, score.Breakdown[domain.FactorTime], 1e-9)
	assert.Len(t, score.Breakdown, 5)
	assert.Empty(t, score.Recommendations)
	assert.False(t, score.EvaluatedAt.IsZero())
}

func TestEvaluate_SameInputSameScore(t *testing.T) {
	engine := NewEngine(
		stubLocation{score: 0.4},
		stubDevices{score: 0.4},
		stubBehavior{score: 0.4},
		stubResources{sensitivity: 0.4},
		testLogger(),
	)
	factors := domain.RiskFactors{UserID: "user-1", Timestamp: businessHours()}

	first, err := engine.Evaluate(context.Background(), factors)
	require.NoError(t, err)
	second, err := engine.Evaluate(context.Background(), factors)
	require.NoError(t, err)

	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Breakdown, second.Breakdown)
}

func TestEvaluate_SingleFactorFailureAbortsAll(t *testing.T) {
	engine := NewEngine(
		stubLocation{score: 0.2},
		stubDevices{err: errors.New("device trust timeout")},
		stubBehavior{score: 0.1},
		stubResources{sensitivity: 0.5},
		testLogger(),
	)

	score, err := engine.Evaluate(context.Background(), domain.RiskFactors{
		UserID:    "user-1",
		Timestamp: businessHours(),
	})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeRiskEvaluation))

	// No partial score ever leaks out.
	assert.Zero(t, score.Total)
	assert.Nil(t, score.Breakdown)
}

func TestEvaluate_RecommendationsByBand(t *testing.T) {
	highEngine := NewEngine(
		stubLocation{score: 0.9},
		stubDevices{score: 0.9},
		stubBehavior{score: 0.9},
		stubResources{sensitivity: 0.9},
		testLogger(),
	)
	score, err := highEngine.Evaluate(context.Background(), domain.RiskFactors{
		Timestamp: time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	// 0.85*0.9 + 0.15*0.7 = 0.87
	assert.Equal(t, domain.BandHigh, score.Band())
	assert.Contains(t, score.Recommendations, "require_mfa")
	assert.Contains(t, score.Recommendations, "increase_monitoring")

	mediumEngine := NewEngine(
		stubLocation{score: 0.6},
		stubDevices{score: 0.6},
		stubBehavior{score: 0.6},
		stubResources{sensitivity: 0.6},
		testLogger(),
	)
	score, err = mediumEngine.Evaluate(context.Background(), domain.RiskFactors{Timestamp: businessHours()})
	require.NoError(t, err)
	assert.Equal(t, domain.BandMedium, score.Band())
	assert.Equal(t, []string{"require_mfa"}, score.Recommendations)
}

func TestTimeOfDayScore(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2026, 3, 10, hour, 30, 0, 0, time.UTC)
	}

	assert.InDelta(t, 0.1, TimeOfDayScore(at(8)), 1e-9)
	assert.InDelta(t, 0.1, TimeOfDayScore(at(17)), 1e-9)
	assert.InDelta(t, 0.3, TimeOfDayScore(at(18)), 1e-9)
	assert.InDelta(t, 0.3, TimeOfDayScore(at(7)), 1e-9)
	assert.InDelta(t, 0.7, TimeOfDayScore(at(23)), 1e-9)
	assert.InDelta(t, 0.7, TimeOfDayScore(at(2)), 1e-9)
	assert.InDelta(t, 0.7, TimeOfDayScore(at(5)), 1e-9)
}
