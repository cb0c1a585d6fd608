package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "keygate/internal/shared/errors"
)

func mustKey(t *testing.T, plan Plan) *AccessKey {
	t.Helper()
	key, err := NewAccessKey("user@example.com", plan, "ord_test1")
	require.NoError(t, err)
	return key
}

func TestNewAccessKey(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		plan    Plan
		wantErr bool
	}{
		{name: "valid weekly key", email: "user@example.com", plan: PlanWeekly},
		{name: "valid semester key", email: "user@example.com", plan: PlanSemester},
		{name: "missing email", email: "", plan: PlanWeekly, wantErr: true},
		{name: "invalid plan", email: "user@example.com", plan: Plan("lifetime"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := NewAccessKey(tt.email, tt.plan, "ord_abc")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, key.Key(), 32)
			assert.Equal(t, tt.plan, key.Plan())
			assert.Equal(t, key.IssuedAt().Add(tt.plan.Duration()), key.ExpiresAt())
			assert.Nil(t, key.PreferredModel())
			assert.False(t, key.Revoked())
		})
	}
}

func TestNewAccessKey_GeneratesUniqueTokens(t *testing.T) {
	a, err := NewAccessKey("user@example.com", PlanWeekly, "ord_a")
	require.NoError(t, err)
	b, err := NewAccessKey("user@example.com", PlanWeekly, "ord_b")
	require.NoError(t, err)

	assert.NotEmpty(t, a.Key())
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestAccessKey_ExpiryWindows(t *testing.T) {
	key := mustKey(t, PlanWeekly)
	expiry := key.ExpiresAt()
	grace := 5 * time.Hour

	assert.False(t, key.IsExpired(expiry.Add(-time.Minute)))
	assert.False(t, key.IsExpired(expiry))
	assert.True(t, key.IsExpired(expiry.Add(time.Second)))

	assert.False(t, key.InGracePeriod(expiry.Add(-time.Minute), grace))
	assert.True(t, key.InGracePeriod(expiry.Add(3*time.Hour), grace))
	assert.True(t, key.InGracePeriod(expiry.Add(5*time.Hour), grace))
	assert.False(t, key.InGracePeriod(expiry.Add(6*time.Hour), grace))
}

func TestAccessKey_SetPreferredModel(t *testing.T) {
	tests := []struct {
		name       string
		plan       Plan
		model      ModelID
		wantErr    bool
		wantModels []string
	}{
		{name: "semester allows fast-small", plan: PlanSemester, model: ModelFastSmall},
		{name: "semester allows premium", plan: PlanSemester, model: ModelPremium},
		{name: "monthly allows balanced", plan: PlanMonthly, model: ModelBalanced},
		{
			name:       "weekly rejects premium",
			plan:       PlanWeekly,
			model:      ModelPremium,
			wantErr:    true,
			wantModels: []string{"fast-small"},
		},
		{
			name:       "semester rejects unknown model",
			plan:       PlanSemester,
			model:      ModelID("nonexistent-model"),
			wantErr:    true,
			wantModels: []string{"fast-small", "balanced", "premium"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := mustKey(t, tt.plan)
			err := key.SetPreferredModel(tt.model)
			if tt.wantErr {
				require.Error(t, err)
				appErr := apperrors.GetAppError(err)
				require.NotNil(t, appErr)
				assert.Equal(t, apperrors.ReasonModelNotAllowed, appErr.Reason)
				assert.Equal(t, tt.wantModels, appErr.AllowedModels)
				assert.Nil(t, key.PreferredModel())
				return
			}
			require.NoError(t, err)
			require.NotNil(t, key.PreferredModel())
			assert.Equal(t, tt.model, *key.PreferredModel())
			assert.True(t, IsModelAllowed(tt.plan, *key.PreferredModel()))
		})
	}
}

func TestAccessKey_EffectiveModel(t *testing.T) {
	key := mustKey(t, PlanMonthly)
	assert.Equal(t, ModelBalanced, key.EffectiveModel())

	require.NoError(t, key.SetPreferredModel(ModelFastSmall))
	assert.Equal(t, ModelFastSmall, key.EffectiveModel())

	key.ClearPreferredModel()
	assert.Equal(t, ModelBalanced, key.EffectiveModel())
}

func TestAccessKey_Revoke(t *testing.T) {
	key := mustKey(t, PlanWeekly)
	assert.False(t, key.Revoked())

	key.Revoke()
	assert.True(t, key.Revoked())

	// second revoke is a no-op
	key.Revoke()
	assert.True(t, key.Revoked())
}

func TestAccessKey_MaskedKey(t *testing.T) {
	key := mustKey(t, PlanWeekly)
	masked := key.MaskedKey()
	assert.Len(t, masked, 11)
	assert.Equal(t, key.Key()[:8], masked[:8])
	assert.Equal(t, "...", masked[8:])
}
