package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/attaboy/trustplane/internal/domain"
	"github.com/attaboy/trustplane/internal/enforce"
	"github.com/attaboy/trustplane/internal/guard"
	"github.com/attaboy/trustplane/internal/monitor"
	"github.com/attaboy/trustplane/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedEvaluator struct {
	total float64
}

func (f fixedEvaluator) Evaluate(_ context.Context, _ domain.RiskFactors) (domain.RiskScore, error) {
	return domain.RiskScore{Total: f.total, EvaluatedAt: time.Now()}, nil
}

type fixedBehavior struct{}

func (fixedBehavior) Score(_ context.Context, _ string, _ domain.BehaviorMetrics) (float64, error) {
	return 0, nil
}

type fixedResources struct{}

func (fixedResources) Profile(_ context.Context, resourceID string) (domain.ResourceProfile, error) {
	return domain.ResourceProfile{ResourceID: resourceID}, nil
}

type nullSink struct{}

func (nullSink) LogEvent(_ context.Context, _ domain.AuditEvent) error { return nil }
func (nullSink) SendAlert(_ context.Context, _ domain.Alert) error     { return nil }

func newAccessHandler(total float64, rateLimit int) *AccessHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	evaluator := fixedEvaluator{total: total}
	sessions := monitor.New(evaluator, fixedBehavior{}, nullSink{}, nullSink{}, logger)
	decisions := policy.NewEngine(evaluator, fixedResources{}, policy.NewCatalog(nil), nullSink{}, nullSink{}, logger)
	facade := enforce.New(decisions, sessions, logger)
	return NewAccessHandler(facade, guard.NewRateLimiter(rateLimit, time.Minute))
}

func postJSON(handlerFn http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/access/evaluate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handlerFn(rec, req)
	return rec
}

func TestEvaluate_GrantedDecision(t *testing.T) {
	h := newAccessHandler(0.1, 10)

	rec := postJSON(h.Evaluate, `{"user_id":"user-1","resource_id":"res-1","action":"read"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"effect":"granted"`)
	assert.Contains(t, rec.Body.String(), `"allowed":true`)
}

func TestEvaluate_DeniedDecisionStillOK(t *testing.T) {
	h := newAccessHandler(0.95, 10)

	rec := postJSON(h.Evaluate, `{"user_id":"user-1","resource_id":"res-1","action":"read"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"effect":"denied"`)
}

func TestEvaluate_MissingFields(t *testing.T) {
	h := newAccessHandler(0.1, 10)

	rec := postJSON(h.Evaluate, `{"resource_id":"res-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(h.Evaluate, `{"user_id":"user-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(h.Evaluate, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluate_RateLimited(t *testing.T) {
	h := newAccessHandler(0.1, 1)

	body := `{"user_id":"user-1","resource_id":"res-1","action":"read"}`
	rec := postJSON(h.Evaluate, body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(h.Evaluate, body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
}

func TestRespondError_MapsAppErrorStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, domain.ErrNotFound("session", "sess-1"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestRespondError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}
