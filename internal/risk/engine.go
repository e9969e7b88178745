package risk

import (
	"context"
	"log/slog"
	"time"

	"github.com/attaboy/trustplane/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Engine aggregates the five factor signals into a single RiskScore.
type Engine struct {
	location  LocationSource
	devices   DeviceTrustSource
	behavior  BehaviorAnalyzer
	resources ResourceProfileSource
	logger    *slog.Logger
}

// NewEngine creates a scoring engine over the given factor sources.
func NewEngine(
	location LocationSource,
	devices DeviceTrustSource,
	behavior BehaviorAnalyzer,
	resources ResourceProfileSource,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		location:  location,
		devices:   devices,
		behavior:  behavior,
		resources: resources,
		logger:    logger,
	}
}

// Evaluate runs the five factor lookups concurrently, joins on all of
// them, and combines the results with the fixed weight table. Any single
// lookup failure aborts the whole evaluation; no partial score is ever
// produced.
func (e *Engine) Evaluate(ctx context.Context, factors domain.RiskFactors) (domain.RiskScore, error) {
	var (
		locationScore float64
		deviceScore   float64
		behaviorScore float64
		timeScore     float64
		resourceScore float64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		assessment, err := e.location.Lookup(gctx, factors.SourceIP)
		if err != nil {
			return err
		}
		locationScore = assessment.Score
		return nil
	})

	g.Go(func() error {
		assessment, err := e.devices.Trust(gctx, factors.DeviceID)
		if err != nil {
			return err
		}
		deviceScore = assessment.Score
		return nil
	})

	g.Go(func() error {
		score, err := e.behavior.Score(gctx, factors.UserID, factors.Behavior)
		if err != nil {
			return err
		}
		behaviorScore = score
		return nil
	})

	g.Go(func() error {
		timeScore = TimeOfDayScore(factors.Timestamp)
		return nil
	})

	g.Go(func() error {
		profile, err := e.resources.Profile(gctx, factors.ResourceID)
		if err != nil {
			return err
		}
		resourceScore = profile.Sensitivity
		return nil
	})

	if err := g.Wait(); err != nil {
		e.logger.Warn("risk evaluation aborted",
			"user_id", factors.UserID,
			"resource_id", factors.ResourceID,
			"error", err,
		)
		return domain.RiskScore{}, domain.ErrRiskEvaluation(err)
	}

	breakdown := map[domain.Factor]float64{
		domain.FactorLocation: locationScore,
		domain.FactorDevice:   deviceScore,
		domain.FactorBehavior: behaviorScore,
		domain.FactorTime:     timeScore,
		domain.FactorResource: resourceScore,
	}

	total := domain.CombineFactors(breakdown)

	return domain.RiskScore{
		Total:           total,
		Breakdown:       breakdown,
		Recommendations: recommendationsFor(domain.BandFor(total)),
		EvaluatedAt:     time.Now(),
	}, nil
}

// recommendationsFor maps a severity band to advisory tags. Bands come
// from domain.BandFor; this table adds advice only, never thresholds.
func recommendationsFor(band domain.RiskBand) []string {
	switch band {
	case domain.BandCritical:
		return []string{"terminate_session", "notify_security_team"}
	case domain.BandHigh:
		return []string{"require_mfa", "increase_monitoring"}
	case domain.BandMedium:
		return []string{"require_mfa"}
	default:
		return nil
	}
}
