package handler

import (
	"net/http"

	"github.com/attaboy/trustplane/internal/domain"
	"github.com/attaboy/trustplane/internal/enforce"
	"github.com/attaboy/trustplane/internal/guard"
)

// AccessHandler handles access-evaluation endpoints.
type AccessHandler struct {
	facade  *enforce.Facade
	limiter *guard.RateLimiter
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(facade *enforce.Facade, limiter *guard.RateLimiter) *AccessHandler {
	return &AccessHandler{facade: facade, limiter: limiter}
}

// Evaluate handles POST /access/evaluate — runs the full risk evaluation
// and policy decision for one access request. The decision body is
// returned for every effect; a denied decision is still a 200.
func (h *AccessHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var access domain.AccessContext
	if err := DecodeJSON(r, &access); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if access.UserID == "" {
		RespondError(w, domain.ErrValidation("user_id is required"))
		return
	}
	if access.ResourceID == "" {
		RespondError(w, domain.ErrValidation("resource_id is required"))
		return
	}

	if result := h.limiter.Check(r.Context(), access.UserID); !result.Allowed {
		RespondError(w, domain.ErrRateLimited(result.Reason))
		return
	}

	decision, err := h.facade.Authorize(r.Context(), access)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, decision)
}
