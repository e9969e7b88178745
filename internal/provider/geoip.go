package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/attaboy/trustplane/internal/risk"
)

// GeoIPClient resolves network origins through an external geo-IP risk
// service. Without a configured base URL it degrades to a static neutral
// assessment (local dev).
type GeoIPClient struct {
	baseURL string
	logger  *slog.Logger
	client  *http.Client
}

// NewGeoIPClient creates a geo-IP location source.
func NewGeoIPClient(baseURL string, logger *slog.Logger) *GeoIPClient {
	return &GeoIPClient{
		baseURL: baseURL,
		logger:  logger,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Lookup returns the location risk assessment for an IP. A lookup failure
// is returned as-is; the scoring engine treats it as fatal to the current
// evaluation.
func (c *GeoIPClient) Lookup(ctx context.Context, ip string) (risk.LocationAssessment, error) {
	if c.baseURL == "" {
		c.logger.Debug("geoip base url not set, using neutral assessment", "ip", ip)
		return risk.LocationAssessment{Country: "unknown", Score: 0.2}, nil
	}

	endpoint := fmt.Sprintf("%s/v1/locations/%s", c.baseURL, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return risk.LocationAssessment{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return risk.LocationAssessment{}, fmt.Errorf("geoip lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return risk.LocationAssessment{}, fmt.Errorf("geoip returned %d", resp.StatusCode)
	}

	var assessment risk.LocationAssessment
	if err := json.NewDecoder(resp.Body).Decode(&assessment); err != nil {
		return risk.LocationAssessment{}, fmt.Errorf("decode response: %w", err)
	}

	assessment.Score = clamp01(assessment.Score)
	return assessment, nil
}

// clamp01 keeps factor scores inside the [0,1] contract this side of the
// wire, whatever the remote service sends.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
