package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlan(t *testing.T) {
	for _, raw := range []string{"weekly", "monthly", "semester"} {
		plan, err := ParsePlan(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, plan.String())
	}

	_, err := ParsePlan("yearly")
	assert.Error(t, err)
}

func TestPlan_DurationAndPrice(t *testing.T) {
	tests := []struct {
		plan  Plan
		days  int
		price uint64
	}{
		{plan: PlanWeekly, days: 7, price: 1000},
		{plan: PlanMonthly, days: 30, price: 2500},
		{plan: PlanSemester, days: 120, price: 5000},
	}

	for _, tt := range tests {
		t.Run(tt.plan.String(), func(t *testing.T) {
			assert.Equal(t, time.Duration(tt.days)*24*time.Hour, tt.plan.Duration())
			assert.Equal(t, tt.price, tt.plan.PriceCents())

			issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			assert.Equal(t, issued.AddDate(0, 0, tt.days), tt.plan.ExpiryFrom(issued))
		})
	}
}

func TestModelPolicy(t *testing.T) {
	tests := []struct {
		plan        Plan
		allowed     []ModelID
		defaultTier ModelID
	}{
		{plan: PlanWeekly, allowed: []ModelID{ModelFastSmall}, defaultTier: ModelFastSmall},
		{plan: PlanMonthly, allowed: []ModelID{ModelFastSmall, ModelBalanced}, defaultTier: ModelBalanced},
		{plan: PlanSemester, allowed: []ModelID{ModelFastSmall, ModelBalanced, ModelPremium}, defaultTier: ModelPremium},
	}

	for _, tt := range tests {
		t.Run(tt.plan.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, AllowedModels(tt.plan))
			assert.Equal(t, tt.defaultTier, DefaultModel(tt.plan))

			for _, m := range tt.allowed {
				assert.True(t, IsModelAllowed(tt.plan, m))
			}
			assert.False(t, IsModelAllowed(tt.plan, ModelID("nonexistent-model")))
		})
	}
}

func TestAllowedModels_ReturnsCopy(t *testing.T) {
	models := AllowedModels(PlanSemester)
	models[0] = ModelID("mutated")
	assert.Equal(t, ModelFastSmall, AllowedModels(PlanSemester)[0])
}

func TestModelPolicy_UnknownPlan(t *testing.T) {
	assert.Nil(t, AllowedModels(Plan("yearly")))
	assert.Nil(t, AllowedModelNames(Plan("yearly")))
	assert.False(t, IsModelAllowed(Plan("yearly"), ModelFastSmall))
}
