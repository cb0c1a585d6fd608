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
	"keygate/internal/infrastructure/persistence/models"
	"keygate/internal/infrastructure/repository"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

type fixture struct {
	keyRepo     *repository.AccessKeyRepository
	sessionRepo *repository.SessionRepository
	start       *StartSessionUseCase
	heartbeat   *HeartbeatSessionUseCase
	end         *EndSessionUseCase
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

	keyRepo := repository.NewAccessKeyRepository(database)
	sessionRepo := repository.NewSessionRepository(database)
	return &fixture{
		keyRepo:     keyRepo,
		sessionRepo: sessionRepo,
		start:       NewStartSessionUseCase(keyRepo, sessionRepo, logger.NewLogger()),
		heartbeat:   NewHeartbeatSessionUseCase(sessionRepo),
		end:         NewEndSessionUseCase(sessionRepo),
	}
}

func (f *fixture) storeKey(t *testing.T, plan entitlement.Plan) *entitlement.AccessKey {
	t.Helper()
	key, err := entitlement.NewAccessKey("user@example.com", plan, "ord_test1")
	require.NoError(t, err)
	require.NoError(t, f.keyRepo.Create(context.Background(), key))
	return key
}

func TestStartSession_DisplacesExisting(t *testing.T) {
	f := newFixture(t)
	key := f.storeKey(t, entitlement.PlanMonthly)
	ctx := context.Background()

	// device A claims the key
	first, err := f.start.Execute(ctx, StartSessionCommand{Key: key.Key()})
	require.NoError(t, err)
	assert.False(t, first.ReplacedExisting)
	assert.NotEmpty(t, first.SessionID)

	// device B claims the same key and displaces A
	second, err := f.start.Execute(ctx, StartSessionCommand{Key: key.Key()})
	require.NoError(t, err)
	assert.True(t, second.ReplacedExisting)
	assert.NotEqual(t, first.SessionID, second.SessionID)

	// A's next heartbeat learns it was displaced
	_, err = f.heartbeat.Execute(ctx, HeartbeatSessionCommand{SessionID: first.SessionID})
	require.Error(t, err)
	assert.True(t, apperrors.HasReason(err, apperrors.ReasonSessionNotFound))

	// B is still alive
	result, err := f.heartbeat.Execute(ctx, HeartbeatSessionCommand{SessionID: second.SessionID})
	require.NoError(t, err)
	assert.True(t, result.OK)

	count, err := f.sessionRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStartSession_RejectsBadKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	revoked := f.storeKey(t, entitlement.PlanWeekly)
	revoked.Revoke()
	require.NoError(t, f.keyRepo.Update(ctx, revoked))

	expired := f.storeKey(t, entitlement.PlanWeekly)
	startAfterExpiry := f.start.WithClock(func() time.Time {
		return expired.ExpiresAt().Add(time.Minute)
	})

	_, err := f.start.Execute(ctx, StartSessionCommand{Key: "kg_missing"})
	require.Error(t, err)
	assert.True(t, apperrors.HasReason(err, apperrors.ReasonInvalidKey))

	_, err = f.start.Execute(ctx, StartSessionCommand{Key: revoked.Key()})
	require.Error(t, err)
	assert.True(t, apperrors.HasReason(err, apperrors.ReasonInvalidKey))

	_, err = startAfterExpiry.Execute(ctx, StartSessionCommand{Key: expired.Key()})
	require.Error(t, err)
	assert.True(t, apperrors.HasReason(err, apperrors.ReasonKeyExpired))
}

func TestEndSession_Idempotent(t *testing.T) {
	f := newFixture(t)
	key := f.storeKey(t, entitlement.PlanMonthly)
	ctx := context.Background()

	started, err := f.start.Execute(ctx, StartSessionCommand{Key: key.Key()})
	require.NoError(t, err)

	result, err := f.end.Execute(ctx, EndSessionCommand{SessionID: started.SessionID})
	require.NoError(t, err)
	assert.True(t, result.OK)

	// ending again, or ending an unknown session, succeeds quietly
	result, err = f.end.Execute(ctx, EndSessionCommand{SessionID: started.SessionID})
	require.NoError(t, err)
	assert.True(t, result.OK)

	count, err := f.sessionRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestReclaimStale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	keyA := f.storeKey(t, entitlement.PlanMonthly)
	keyB, err := entitlement.NewAccessKey("other@example.com", entitlement.PlanMonthly, "ord_test2")
	require.NoError(t, err)
	require.NoError(t, f.keyRepo.Create(ctx, keyB))

	staleSession, err := f.start.Execute(ctx, StartSessionCommand{Key: keyA.Key()})
	require.NoError(t, err)
	liveSession, err := f.start.Execute(ctx, StartSessionCommand{Key: keyB.Key()})
	require.NoError(t, err)

	// B heartbeats 90 seconds from now; A stays silent
	future := time.Now().UTC().Add(90 * time.Second)
	_, err = f.sessionRepo.Heartbeat(ctx, liveSession.SessionID, future)
	require.NoError(t, err)

	reclaim := NewReclaimStaleUseCase(f.sessionRepo, 60*time.Second, logger.NewLogger()).
		WithClock(func() time.Time { return future })

	result, err := reclaim.Execute(ctx, ReclaimStaleCommand{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Reclaimed)

	// A is gone and B survives
	_, err = f.heartbeat.Execute(ctx, HeartbeatSessionCommand{SessionID: staleSession.SessionID})
	require.Error(t, err)
	assert.True(t, apperrors.HasReason(err, apperrors.ReasonSessionNotFound))

	// a second sweep finds nothing new
	result, err = reclaim.Execute(ctx, ReclaimStaleCommand{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Reclaimed)

	// the key A held is claimable again
	restarted, err := f.start.Execute(ctx, StartSessionCommand{Key: keyA.Key()})
	require.NoError(t, err)
	assert.False(t, restarted.ReplacedExisting)
}
