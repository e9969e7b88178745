package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/attaboy/trustplane/internal/audit"
	"github.com/attaboy/trustplane/internal/auth"
	"github.com/attaboy/trustplane/internal/enforce"
	"github.com/attaboy/trustplane/internal/guard"
	"github.com/attaboy/trustplane/internal/handler"
	"github.com/attaboy/trustplane/internal/monitor"
	"github.com/attaboy/trustplane/internal/policy"
	"github.com/attaboy/trustplane/internal/provider"
	"github.com/attaboy/trustplane/internal/repository"
	"github.com/attaboy/trustplane/internal/risk"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool   *pgxpool.Pool
	JWTMgr *auth.JWTManager
	Logger *slog.Logger
	// External provider config
	GeoIPBaseURL       string
	DeviceTrustBaseURL string
	BehaviorBaseURL    string
	AccessRateLimit    int
}

// NewRouter assembles the chi.Router with all routes and middleware. The
// initial rule catalog is loaded from the database during assembly.
func NewRouter(ctx context.Context, deps RouterDeps) (chi.Router, error) {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Repositories
	ruleRepo := repository.NewPgRuleRepository()
	auditRepo := repository.NewPgAuditRepository()
	outboxRepo := repository.NewPgOutboxRepository()
	resourceSource := repository.NewPgResourceProfileSource(pool)

	// External factor sources, with local fallbacks when unconfigured
	behaviorBreaker := guard.NewCircuitBreaker(5, 30*time.Second)
	geoClient := provider.NewGeoIPClient(deps.GeoIPBaseURL, logger)
	deviceClient := provider.NewDeviceTrustClient(deps.DeviceTrustBaseURL, logger)
	behaviorClient := provider.NewBehaviorClient(deps.BehaviorBaseURL, behaviorBreaker, logger)

	// Audit pipeline
	recorder := audit.NewRecorder(pool, auditRepo, outboxRepo, logger)
	alerter := audit.NewAlerter(pool, outboxRepo, logger)

	// Engines
	riskEngine := risk.NewEngine(geoClient, deviceClient, behaviorClient, resourceSource, logger)

	rules, err := ruleRepo.ListEnabled(ctx, pool)
	if err != nil {
		return nil, err
	}
	policyEngine := policy.NewEngine(riskEngine, resourceSource, policy.NewCatalog(rules), recorder, alerter, logger)
	logger.Info("rule catalog loaded", "count", len(rules))

	sessionMonitor := monitor.New(riskEngine, behaviorClient, recorder, alerter, logger)
	facade := enforce.New(policyEngine, sessionMonitor, logger)

	// Guards
	accessLimiter := guard.NewRateLimiter(deps.AccessRateLimit, time.Minute)

	// Handlers
	accessHandler := handler.NewAccessHandler(facade, accessLimiter)
	sessionHandler := handler.NewSessionHandler(sessionMonitor, riskEngine, pool)
	rulesHandler := handler.NewRulesHandler(policyEngine, ruleRepo, auditRepo, pool, logger)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS)
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Service-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateService(jwtMgr))

		r.Post("/access/evaluate", accessHandler.Evaluate)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Start)
			r.Get("/", sessionHandler.List)
			r.Get("/{id}", sessionHandler.Get)
			r.Delete("/{id}", sessionHandler.Stop)
			r.Post("/{id}/terminate", sessionHandler.Terminate)
			r.Post("/{id}/resume", sessionHandler.Resume)
		})
	})

	// Admin routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))
		r.Use(auth.RequireRole(auth.RoleAdmin, auth.RoleViewer))

		r.Get("/rules", rulesHandler.List)
		r.Get("/audit", rulesHandler.Audit)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin))
			r.Post("/rules/reload", rulesHandler.Reload)
		})
	})

	return r, nil
}
