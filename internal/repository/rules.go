package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/attaboy/trustplane/internal/domain"
)

// PgRuleRepository implements RuleRepository against policy_rules.
type PgRuleRepository struct{}

// NewPgRuleRepository creates the rule repository.
func NewPgRuleRepository() *PgRuleRepository { return &PgRuleRepository{} }

func (r *PgRuleRepository) ListEnabled(ctx context.Context, db DBTX) ([]domain.PolicyRule, error) {
	rows, err := db.Query(ctx, `
		SELECT id, name, conditions, actions, risk_threshold, priority, version
		FROM policy_rules
		WHERE enabled = true
		ORDER BY priority ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.PolicyRule
	for rows.Next() {
		var (
			rule       domain.PolicyRule
			conditions []byte
			actions    []byte
		)
		if err := rows.Scan(&rule.ID, &rule.Name, &conditions, &actions, &rule.RiskThreshold, &rule.Priority, &rule.Version); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
			return nil, fmt.Errorf("decode conditions for rule %s: %w", rule.ID, err)
		}
		if err := json.Unmarshal(actions, &rule.Actions); err != nil {
			return nil, fmt.Errorf("decode actions for rule %s: %w", rule.ID, err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
