package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keygate/internal/domain/entitlement"
	"keygate/internal/domain/session"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

func TestRevokeKey_ByPrefix(t *testing.T) {
	f := newFixture(t)
	key := f.storeKey(t, entitlement.PlanMonthly)
	uc := NewRevokeKeyUseCase(f.keyRepo, f.sessionRepo, logger.NewLogger())

	// only the masked prefix is available to the operator
	result, err := uc.Execute(context.Background(), RevokeKeyCommand{
		Key:     key.Key()[:8],
		AdminID: "admin",
	})
	require.NoError(t, err)
	assert.True(t, result.Revoked)
	assert.Equal(t, key.MaskedKey(), result.MaskedKey)

	stored, err := f.keyRepo.FindByKey(context.Background(), key.Key())
	require.NoError(t, err)
	assert.True(t, stored.Revoked())
}

func TestRevokeKey_EndsLiveSession(t *testing.T) {
	f := newFixture(t)
	key := f.storeKey(t, entitlement.PlanWeekly)

	s, err := session.NewSession(key.Key())
	require.NoError(t, err)
	_, err = f.sessionRepo.Replace(context.Background(), s)
	require.NoError(t, err)

	uc := NewRevokeKeyUseCase(f.keyRepo, f.sessionRepo, logger.NewLogger())
	_, err = uc.Execute(context.Background(), RevokeKeyCommand{Key: key.Key(), AdminID: "admin"})
	require.NoError(t, err)

	_, err = f.sessionRepo.FindBySessionID(context.Background(), s.SessionID())
	assert.True(t, apperrors.HasReason(err, apperrors.ReasonSessionNotFound))
}

func TestRevokeKey_Validation(t *testing.T) {
	f := newFixture(t)
	uc := NewRevokeKeyUseCase(f.keyRepo, f.sessionRepo, logger.NewLogger())

	tests := []struct {
		name string
		key  string
	}{
		{"empty key", ""},
		{"prefix too short", "abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), RevokeKeyCommand{Key: tt.key, AdminID: "admin"})
			require.Error(t, err)
		})
	}

	_, err := uc.Execute(context.Background(), RevokeKeyCommand{Key: "deadbeef", AdminID: "admin"})
	assert.True(t, apperrors.HasReason(err, apperrors.ReasonInvalidKey))
}
