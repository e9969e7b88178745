package provider

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/attaboy/trustplane/internal/domain"
	"github.com/attaboy/trustplane/internal/guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFallbackClient() *BehaviorClient {
	breaker := guard.NewCircuitBreaker(5, 30*time.Second)
	return NewBehaviorClient("", breaker, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestScore_FallbackQuietUser(t *testing.T) {
	client := newFallbackClient()

	score, err := client.Score(context.Background(), "user-1", domain.BehaviorMetrics{
		RequestVelocity: 10,
	})
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestScore_FallbackAdditiveSignals(t *testing.T) {
	client := newFallbackClient()

	score, err := client.Score(context.Background(), "user-1", domain.BehaviorMetrics{
		RequestVelocity:  60,
		AuthFailures:     3,
		UnusualResources: true,
	})
	require.NoError(t, err)
	// 0.15 + 0.20 + 0.15
	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestScore_FallbackAllSignals(t *testing.T) {
	client := newFallbackClient()

	score, err := client.Score(context.Background(), "user-1", domain.BehaviorMetrics{
		RequestVelocity:  500,
		AuthFailures:     20,
		UnusualResources: true,
		OffHoursActivity: true,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.95, score, 1e-9)
}

func TestScore_OpenCircuitShortCircuits(t *testing.T) {
	breaker := guard.NewCircuitBreaker(1, time.Minute)
	client := NewBehaviorClient("http://analytics.internal", breaker, slog.New(slog.NewTextHandler(io.Discard, nil)))

	breaker.Check(context.Background(), "behavior_analytics")
	breaker.RecordFailure("behavior_analytics")

	_, err := client.Score(context.Background(), "user-1", domain.BehaviorMetrics{})
	assert.Error(t, err)
}
