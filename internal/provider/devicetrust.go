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

// DeviceTrustClient resolves device ids through an external device
// posture service (MDM/compliance backend). Without a configured base URL
// it degrades to a static unmanaged-device assessment.
type DeviceTrustClient struct {
	baseURL string
	logger  *slog.Logger
	client  *http.Client
}

// NewDeviceTrustClient creates a device trust source.
func NewDeviceTrustClient(baseURL string, logger *slog.Logger) *DeviceTrustClient {
	return &DeviceTrustClient{
		baseURL: baseURL,
		logger:  logger,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Trust returns the trust assessment for a device id.
func (c *DeviceTrustClient) Trust(ctx context.Context, deviceID string) (risk.DeviceAssessment, error) {
	if c.baseURL == "" {
		c.logger.Debug("device trust base url not set, using neutral assessment", "device_id", deviceID)
		return risk.DeviceAssessment{Managed: false, Compliant: false, Score: 0.3}, nil
	}

	endpoint := fmt.Sprintf("%s/v1/devices/%s/trust", c.baseURL, url.PathEscape(deviceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return risk.DeviceAssessment{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return risk.DeviceAssessment{}, fmt.Errorf("device trust lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return risk.DeviceAssessment{}, fmt.Errorf("device trust returned %d", resp.StatusCode)
	}

	var assessment risk.DeviceAssessment
	if err := json.NewDecoder(resp.Body).Decode(&assessment); err != nil {
		return risk.DeviceAssessment{}, fmt.Errorf("decode response: %w", err)
	}

	assessment.Score = clamp01(assessment.Score)
	return assessment, nil
}
