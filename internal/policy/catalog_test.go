package policy

import (
	"testing"
	"time"

	"github.com/attaboy/trustplane/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog_OrdersByPriority(t *testing.T) {
	catalog := NewCatalog([]domain.PolicyRule{
		{ID: "c", Priority: 30},
		{ID: "a", Priority: 10},
		{ID: "b", Priority: 20},
	})

	rules := catalog.Rules()
	require.Len(t, rules, 3)
	assert.Equal(t, "a", rules[0].ID)
	assert.Equal(t, "b", rules[1].ID)
	assert.Equal(t, "c", rules[2].ID)
}

func TestNewCatalog_StableOnPriorityTies(t *testing.T) {
	catalog := NewCatalog([]domain.PolicyRule{
		{ID: "first", Priority: 10},
		{ID: "second", Priority: 10},
	})

	rules := catalog.Rules()
	assert.Equal(t, "first", rules[0].ID)
	assert.Equal(t, "second", rules[1].ID)
}

func TestNewCatalog_CopiesInput(t *testing.T) {
	input := []domain.PolicyRule{{ID: "a", Priority: 10}}
	catalog := NewCatalog(input)

	input[0].ID = "mutated"
	assert.Equal(t, "a", catalog.Rules()[0].ID)
}

func TestApplicable_FiltersByConditions(t *testing.T) {
	catalog := NewCatalog([]domain.PolicyRule{
		{
			ID:         "low-bar",
			Priority:   10,
			Conditions: []domain.Condition{{Kind: domain.CondRiskScore, Operator: domain.OpGT, Value: 0.2}},
		},
		{
			ID:         "high-bar",
			Priority:   20,
			Conditions: []domain.Condition{{Kind: domain.CondRiskScore, Operator: domain.OpGT, Value: 0.8}},
		},
	})

	applicable := catalog.Applicable(0.5, time.Now())
	require.Len(t, applicable, 1)
	assert.Equal(t, "low-bar", applicable[0].ID)

	assert.Empty(t, catalog.Applicable(0.1, time.Now()))
	assert.Len(t, catalog.Applicable(0.9, time.Now()), 2)
}
