package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/attaboy/trustplane/internal/domain"
	"github.com/attaboy/trustplane/internal/policy"
	"github.com/attaboy/trustplane/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RulesHandler handles the admin rule catalog and audit trail endpoints.
type RulesHandler struct {
	engine *policy.Engine
	rules  repository.RuleRepository
	audits repository.AuditRepository
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRulesHandler creates a new RulesHandler.
func NewRulesHandler(engine *policy.Engine, rules repository.RuleRepository, audits repository.AuditRepository, pool *pgxpool.Pool, logger *slog.Logger) *RulesHandler {
	return &RulesHandler{engine: engine, rules: rules, audits: audits, pool: pool, logger: logger}
}

// List handles GET /admin/rules — returns the active rule catalog in
// priority order.
func (h *RulesHandler) List(w http.ResponseWriter, r *http.Request) {
	catalog := h.engine.Catalog()
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"rules": catalog.Rules(),
		"count": catalog.Len(),
	})
}

// Reload handles POST /admin/rules/reload — rebuilds the catalog from the
// database and swaps it in atomically. In-flight decisions keep the
// catalog they started with.
func (h *RulesHandler) Reload(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.ListEnabled(r.Context(), h.pool)
	if err != nil {
		RespondError(w, domain.ErrInternal("load rules", err))
		return
	}

	h.engine.Reload(policy.NewCatalog(rules))
	h.logger.Info("rule catalog reloaded", "count", len(rules))

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded": true,
		"count":    len(rules),
	})
}

// Audit handles GET /admin/audit — returns the newest audit records.
func (h *RulesHandler) Audit(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			RespondError(w, domain.ErrValidation("limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	events, err := h.audits.ListRecent(r.Context(), h.pool, limit)
	if err != nil {
		RespondError(w, domain.ErrInternal("list audit events", err))
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}
