package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/attaboy/trustplane/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgResourceProfileSource serves resource sensitivity profiles from the
// resource_profiles table. A resource with no configured row gets a
// neutral profile with the default max risk threshold instead of an
// error.
type PgResourceProfileSource struct {
	pool *pgxpool.Pool
}

// NewPgResourceProfileSource creates a resource profile source.
func NewPgResourceProfileSource(pool *pgxpool.Pool) *PgResourceProfileSource {
	return &PgResourceProfileSource{pool: pool}
}

func (s *PgResourceProfileSource) Profile(ctx context.Context, resourceID string) (domain.ResourceProfile, error) {
	if resourceID == "" {
		return defaultProfile(resourceID), nil
	}

	var profile domain.ResourceProfile
	err := s.pool.QueryRow(ctx, `
		SELECT resource_id, sensitivity, max_risk_threshold
		FROM resource_profiles
		WHERE resource_id = $1`, resourceID).
		Scan(&profile.ResourceID, &profile.Sensitivity, &profile.MaxRiskThreshold)
	if errors.Is(err, pgx.ErrNoRows) {
		return defaultProfile(resourceID), nil
	}
	if err != nil {
		return domain.ResourceProfile{}, fmt.Errorf("resource profile lookup: %w", err)
	}
	return profile, nil
}

func defaultProfile(resourceID string) domain.ResourceProfile {
	return domain.ResourceProfile{
		ResourceID:       resourceID,
		Sensitivity:      0.3,
		MaxRiskThreshold: domain.DefaultMaxRiskThreshold,
	}
}
