package policy

import (
	"sort"
	"time"

	"github.com/attaboy/trustplane/internal/domain"
)

// Catalog is the versioned, read-only rule set. Built once from the
// loaded rules and never mutated; reloads swap in a new Catalog.
type Catalog struct {
	rules []domain.PolicyRule
}

// NewCatalog copies the rules and orders them by ascending priority.
// The sort is stable: ties keep load order.
func NewCatalog(rules []domain.PolicyRule) *Catalog {
	cp := make([]domain.PolicyRule, len(rules))
	copy(cp, rules)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Priority < cp[j].Priority })
	return &Catalog{rules: cp}
}

// Applicable returns the rules whose conditions all hold, in priority
// order. The order affects explanation text and applied rule ids only;
// every applicable rule contributes regardless of position.
func (c *Catalog) Applicable(total float64, now time.Time) []domain.PolicyRule {
	var out []domain.PolicyRule
	for _, r := range c.rules {
		if r.Applies(total, now) {
			out = append(out, r)
		}
	}
	return out
}

// Rules returns a copy of the full rule set in priority order.
func (c *Catalog) Rules() []domain.PolicyRule {
	out := make([]domain.PolicyRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Len returns the number of rules in the catalog.
func (c *Catalog) Len() int { return len(c.rules) }
