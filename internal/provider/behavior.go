package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/attaboy/trustplane/internal/domain"
	"github.com/attaboy/trustplane/internal/guard"
)

const behaviorCircuitKey = "behavior_analytics"

// BehaviorClient scores user behavior through an external analytics
// service, guarded by a circuit breaker so a degraded backend trips fast.
// Without a configured base URL it falls back to a local heuristic over
// the supplied activity metrics.
type BehaviorClient struct {
	baseURL string
	breaker *guard.CircuitBreaker
	logger  *slog.Logger
	client  *http.Client
}

// NewBehaviorClient creates a behavior analytics source.
func NewBehaviorClient(baseURL string, breaker *guard.CircuitBreaker, logger *slog.Logger) *BehaviorClient {
	return &BehaviorClient{
		baseURL: baseURL,
		breaker: breaker,
		logger:  logger,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Score returns the behavior risk score for a user in [0,1].
func (c *BehaviorClient) Score(ctx context.Context, userID string, metrics domain.BehaviorMetrics) (float64, error) {
	if c.baseURL == "" {
		return heuristicScore(metrics), nil
	}

	if result := c.breaker.Check(ctx, behaviorCircuitKey); !result.Allowed {
		return 0, fmt.Errorf("behavior analytics unavailable: %s", result.Reason)
	}

	score, err := c.fetchScore(ctx, userID, metrics)
	if err != nil {
		c.breaker.RecordFailure(behaviorCircuitKey)
		return 0, err
	}

	c.breaker.RecordSuccess(behaviorCircuitKey)
	return clamp01(score), nil
}

func (c *BehaviorClient) fetchScore(ctx context.Context, userID string, metrics domain.BehaviorMetrics) (float64, error) {
	body, _ := json.Marshal(map[string]any{
		"user_id": userID,
		"metrics": metrics,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("behavior analysis: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("behavior analytics returned %d", resp.StatusCode)
	}

	var response struct {
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	return response.Score, nil
}

// heuristicScore is the local fallback: additive signal weights capped at
// 1.0.
func heuristicScore(m domain.BehaviorMetrics) float64 {
	var score float64

	if m.RequestVelocity > 100 {
		score += 0.30
	} else if m.RequestVelocity > 50 {
		score += 0.15
	}

	if m.AuthFailures > 5 {
		score += 0.40
	} else if m.AuthFailures > 2 {
		score += 0.20
	}

	if m.UnusualResources {
		score += 0.15
	}

	if m.OffHoursActivity {
		score += 0.10
	}

	return clamp01(score)
}
