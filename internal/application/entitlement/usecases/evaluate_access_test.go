package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"keygate/internal/domain/entitlement"
	"keygate/internal/domain/session"
	"keygate/internal/infrastructure/persistence/models"
	"keygate/internal/infrastructure/repository"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

const gracePeriod = 5 * time.Hour

type fixture struct {
	keyRepo     *repository.AccessKeyRepository
	sessionRepo *repository.SessionRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(
		&models.AccessKeyModel{},
		&models.SessionModel{},
	))

	return &fixture{
		keyRepo:     repository.NewAccessKeyRepository(database),
		sessionRepo: repository.NewSessionRepository(database),
	}
}

func (f *fixture) storeKey(t *testing.T, plan entitlement.Plan) *entitlement.AccessKey {
	t.Helper()
	key, err := entitlement.NewAccessKey("user@example.com", plan, "ord_test1")
	require.NoError(t, err)
	require.NoError(t, f.keyRepo.Create(context.Background(), key))
	return key
}

func (f *fixture) evaluator(t *testing.T, now time.Time) *EvaluateAccessUseCase {
	t.Helper()
	return NewEvaluateAccessUseCase(f.keyRepo, f.sessionRepo, gracePeriod, logger.NewLogger()).
		WithClock(func() time.Time { return now })
}

func TestEvaluateAccess_ValidKey(t *testing.T) {
	f := newFixture(t)
	key := f.storeKey(t, entitlement.PlanMonthly)
	uc := f.evaluator(t, key.ExpiresAt().Add(-time.Hour))

	result, err := uc.Execute(context.Background(), EvaluateAccessCommand{Key: key.Key()})
	require.NoError(t, err)
	assert.Equal(t, "balanced", result.EffectiveModel)

	// an explicit allowed request wins over the default
	result, err = uc.Execute(context.Background(), EvaluateAccessCommand{
		Key:            key.Key(),
		RequestedModel: "fast-small",
	})
	require.NoError(t, err)
	assert.Equal(t, "fast-small", result.EffectiveModel)
}

func TestEvaluateAccess_ModelNotAllowed(t *testing.T) {
	f := newFixture(t)
	key := f.storeKey(t, entitlement.PlanWeekly)
	uc := f.evaluator(t, key.ExpiresAt().Add(-time.Hour))

	_, err := uc.Execute(context.Background(), EvaluateAccessCommand{
		Key:            key.Key(),
		RequestedModel: "premium",
	})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ReasonModelNotAllowed, appErr.Reason)
	assert.Equal(t, []string{"fast-small"}, appErr.AllowedModels)
}

func TestEvaluateAccess_UnknownKey(t *testing.T) {
	f := newFixture(t)
	uc := f.evaluator(t, time.Now().UTC())

	_, err := uc.Execute(context.Background(), EvaluateAccessCommand{Key: "nope"})
	require.Error(t, err)
	assert.True(t, apperrors.HasReason(err, apperrors.ReasonInvalidKey))
}

func TestEvaluateAccess_GraceWindow(t *testing.T) {
	f := newFixture(t)
	key := f.storeKey(t, entitlement.PlanWeekly)
	expiry := key.ExpiresAt()
	beforeExpiry := expiry.Add(-time.Hour)

	tests := []struct {
		name       string
		now        time.Time
		claimed    *time.Time
		wantReason string
	}{
		{name: "before expiry always passes", now: expiry.Add(-time.Minute)},
		{name: "within grace with qualifying session", now: expiry.Add(3 * time.Hour), claimed: &beforeExpiry},
		{name: "beyond grace fails", now: expiry.Add(6 * time.Hour), claimed: &beforeExpiry, wantReason: apperrors.ReasonGracePeriodExpired},
		{name: "expired with no session fails", now: expiry.Add(time.Hour), wantReason: apperrors.ReasonKeyExpired},
		{
			name:       "session started after expiry gets no grace",
			now:        expiry.Add(time.Hour),
			claimed:    timePtr(expiry.Add(30 * time.Minute)),
			wantReason: apperrors.ReasonKeyExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := f.evaluator(t, tt.now)
			_, err := uc.Execute(context.Background(), EvaluateAccessCommand{
				Key:              key.Key(),
				SessionStartedAt: tt.claimed,
			})
			if tt.wantReason == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.HasReason(err, tt.wantReason))
		})
	}
}

func TestEvaluateAccess_PrefersRegistrySessionStart(t *testing.T) {
	f := newFixture(t)
	key := f.storeKey(t, entitlement.PlanWeekly)
	expiry := key.ExpiresAt()

	// registry session started after expiry
	started := expiry.Add(30 * time.Minute)
	s, err := session.ReconstructSession(0, "sess_registry1", key.Key(), started, started)
	require.NoError(t, err)
	_, err = f.sessionRepo.Replace(context.Background(), s)
	require.NoError(t, err)

	// the client claims a qualifying start, but the registry's record wins
	uc := f.evaluator(t, expiry.Add(time.Hour))

	claimed := expiry.Add(-time.Hour)
	_, err = uc.Execute(context.Background(), EvaluateAccessCommand{
		Key:              key.Key(),
		SessionStartedAt: &claimed,
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasReason(err, apperrors.ReasonKeyExpired))
}

func TestEvaluateAccess_RevokedKey(t *testing.T) {
	f := newFixture(t)
	key := f.storeKey(t, entitlement.PlanSemester)
	key.Revoke()
	require.NoError(t, f.keyRepo.Update(context.Background(), key))

	uc := f.evaluator(t, key.ExpiresAt().Add(-time.Hour))
	_, err := uc.Execute(context.Background(), EvaluateAccessCommand{Key: key.Key()})
	require.Error(t, err)
	assert.True(t, apperrors.HasReason(err, apperrors.ReasonInvalidKey))
}

func timePtr(t time.Time) *time.Time {
	return &t
}
