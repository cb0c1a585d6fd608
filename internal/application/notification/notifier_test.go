package notification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"keygate/internal/domain/entitlement"
	domain "keygate/internal/domain/notification"
	"keygate/internal/infrastructure/persistence/models"
	"keygate/internal/infrastructure/repository"
	"keygate/internal/shared/logger"
)

type recordedKeySend struct {
	to   string
	key  string
	plan entitlement.Plan
}

type recordedAlert struct {
	to      string
	orderID string
}

type fakeEmailService struct {
	failSends bool
	keySends  []recordedKeySend
	alerts    []recordedAlert
}

func (f *fakeEmailService) SendKeyDelivery(to, name, key string, plan entitlement.Plan, expiresAt time.Time) error {
	if f.failSends {
		return fmt.Errorf("smtp connection refused")
	}
	f.keySends = append(f.keySends, recordedKeySend{to: to, key: key, plan: plan})
	return nil
}

func (f *fakeEmailService) SendAdminOrderAlert(to, orderID, name, email, plan, referral string) error {
	if f.failSends {
		return fmt.Errorf("smtp connection refused")
	}
	f.alerts = append(f.alerts, recordedAlert{to: to, orderID: orderID})
	return nil
}

func newRetryRepo(t *testing.T) *repository.EmailRetryRepository {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(&models.EmailRetryModel{}))
	return repository.NewEmailRetryRepository(database)
}

func keyPayload() map[string]string {
	return map[string]string{
		"name":       "Ada",
		"key":        "kg_testkey12345",
		"plan":       "monthly",
		"expires_at": time.Now().UTC().Add(30 * 24 * time.Hour).Format(time.RFC3339),
	}
}

func TestDeliverKey_QueuesOnFailure(t *testing.T) {
	repo := newRetryRepo(t)
	email := &fakeEmailService{failSends: true}
	n := NewNotifier(email, repo, logger.NewLogger())
	ctx := context.Background()

	n.DeliverKey(ctx, "ord_abc1", "ada@example.com", "Ada", "kg_testkey12345",
		"monthly", time.Now().UTC().Add(30*24*time.Hour))

	entries, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ord_abc1", entries[0].OrderID())
	assert.Equal(t, domain.EmailKindKeyDelivery, entries[0].Kind())
	assert.Equal(t, "ada@example.com", entries[0].Recipient())
	assert.Equal(t, "kg_testkey12345", entries[0].Payload()["key"])
}

func TestDeliverKey_NoQueueOnSuccess(t *testing.T) {
	repo := newRetryRepo(t)
	email := &fakeEmailService{}
	n := NewNotifier(email, repo, logger.NewLogger())
	ctx := context.Background()

	n.DeliverKey(ctx, "ord_abc1", "ada@example.com", "Ada", "kg_testkey12345",
		"monthly", time.Now().UTC().Add(30*24*time.Hour))

	require.Len(t, email.keySends, 1)
	assert.Equal(t, "ada@example.com", email.keySends[0].to)

	entries, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessRetryQueue_ResendsAndClears(t *testing.T) {
	repo := newRetryRepo(t)
	email := &fakeEmailService{}
	n := NewNotifier(email, repo, logger.NewLogger())
	ctx := context.Background()

	entry, err := domain.NewEmailRetryEntry("ord_abc1", domain.EmailKindKeyDelivery,
		"ada@example.com", keyPayload())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, entry))

	result, err := n.ProcessRetryQueue(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 0, result.Retried)

	require.Len(t, email.keySends, 1)
	assert.Equal(t, "kg_testkey12345", email.keySends[0].key)

	entries, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessRetryQueue_RecordsFailedAttempt(t *testing.T) {
	repo := newRetryRepo(t)
	email := &fakeEmailService{failSends: true}
	n := NewNotifier(email, repo, logger.NewLogger())
	ctx := context.Background()

	entry, err := domain.NewEmailRetryEntry("ord_abc1", domain.EmailKindKeyDelivery,
		"ada@example.com", keyPayload())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, entry))

	result, err := n.ProcessRetryQueue(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Retried)
	assert.Equal(t, 0, result.Sent)

	entries, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Attempts())
	require.NotNil(t, entries[0].LastAttemptAt())

	// the next pass comes before the retry interval elapses, so the
	// entry is left alone
	result, err = n.ProcessRetryQueue(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Retried)
	assert.Equal(t, 0, result.Sent)
}

func TestProcessRetryQueue_EscalatesExhaustedKeyDelivery(t *testing.T) {
	repo := newRetryRepo(t)
	email := &fakeEmailService{}
	n := NewNotifier(email, repo, logger.NewLogger())
	ctx := context.Background()

	lastAttempt := time.Now().UTC().Add(-2 * time.Hour)
	entry, err := domain.ReconstructEmailRetryEntry(0, "ord_abc1",
		domain.EmailKindKeyDelivery, "ada@example.com", keyPayload(),
		domain.MaxAttempts, time.Now().UTC().Add(-12*time.Hour), &lastAttempt)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, entry))

	result, err := n.ProcessRetryQueue(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Escalated)

	require.Len(t, email.alerts, 1)
	assert.Equal(t, "admin@example.com", email.alerts[0].to)
	assert.Equal(t, "ord_abc1", email.alerts[0].orderID)
	assert.Empty(t, email.keySends)

	entries, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessRetryQueue_DropsExpiredEntries(t *testing.T) {
	repo := newRetryRepo(t)
	email := &fakeEmailService{}
	n := NewNotifier(email, repo, logger.NewLogger())
	ctx := context.Background()

	lastAttempt := time.Now().UTC().Add(-3 * time.Hour)
	entry, err := domain.ReconstructEmailRetryEntry(0, "ord_old1",
		domain.EmailKindKeyDelivery, "ada@example.com", keyPayload(),
		2, time.Now().UTC().Add(-25*time.Hour), &lastAttempt)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, entry))

	result, err := n.ProcessRetryQueue(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Dropped)
	assert.Empty(t, email.keySends)
	assert.Empty(t, email.alerts)

	entries, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
