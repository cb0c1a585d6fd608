package usecases

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"keygate/internal/application/notification"
	"keygate/internal/domain/entitlement"
	"keygate/internal/domain/order"
	vo "keygate/internal/domain/order/valueobjects"
	"keygate/internal/infrastructure/persistence/models"
	"keygate/internal/infrastructure/repository"
	"keygate/internal/shared/db"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

// fakeEmailService records sends and fails on demand.
type fakeEmailService struct {
	mu       sync.Mutex
	failNext bool
	keySends []string
	alerts   []string
}

func (f *fakeEmailService) SendKeyDelivery(to, name, key string, plan entitlement.Plan, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return fmt.Errorf("smtp unavailable")
	}
	f.keySends = append(f.keySends, key)
	return nil
}

func (f *fakeEmailService) SendAdminOrderAlert(to, orderID, name, email, plan, referral string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return fmt.Errorf("smtp unavailable")
	}
	f.alerts = append(f.alerts, orderID)
	return nil
}

type fixture struct {
	database  *gorm.DB
	orderRepo *repository.OrderRepository
	keyRepo   *repository.AccessKeyRepository
	retryRepo *repository.EmailRetryRepository
	email     *fakeEmailService
	issuer    *KeyIssuer
	confirm   *ConfirmPaymentUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(
		&models.AccessKeyModel{},
		&models.OrderModel{},
		&models.SessionModel{},
		&models.EmailRetryModel{},
	))

	log := logger.NewLogger()
	orderRepo := repository.NewOrderRepository(database)
	keyRepo := repository.NewAccessKeyRepository(database)
	retryRepo := repository.NewEmailRetryRepository(database)
	email := &fakeEmailService{}
	notifier := notification.NewNotifier(email, retryRepo, log)
	issuer := NewKeyIssuer(orderRepo, keyRepo, db.NewTransactionManager(database),
		notifier, "admin@example.com", log)

	return &fixture{
		database:  database,
		orderRepo: orderRepo,
		keyRepo:   keyRepo,
		retryRepo: retryRepo,
		email:     email,
		issuer:    issuer,
		confirm:   NewConfirmPaymentUseCase(orderRepo, issuer, log),
	}
}

func (f *fixture) createGatewayOrder(t *testing.T, plan entitlement.Plan, txRef string) *order.Order {
	t.Helper()
	o, err := order.NewOrder("Alice", "alice@example.com", plan, "", vo.PaymentMethodGateway)
	require.NoError(t, err)
	require.NoError(t, o.AttachGatewayTxRef(txRef))
	require.NoError(t, f.orderRepo.Create(context.Background(), o))
	return o
}

func TestConfirmPayment_MatchingAmountIssuesKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createGatewayOrder(t, entitlement.PlanWeekly, "cs_test_abc")

	result, err := f.confirm.Execute(ctx, ConfirmPaymentCommand{
		TransactionRef: "cs_test_abc",
		ReportedAmount: 1000,
	})
	require.NoError(t, err)
	assert.True(t, result.Issued)
	assert.Equal(t, "approved", result.Status)

	stored, err := f.orderRepo.FindByID(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.OrderStatusApproved, stored.Status())
	require.NotNil(t, stored.IssuedKey())

	key, err := f.keyRepo.FindByKey(ctx, *stored.IssuedKey())
	require.NoError(t, err)
	assert.Equal(t, entitlement.PlanWeekly, key.Plan())
	assert.Equal(t, key.IssuedAt().Add(7*24*time.Hour), key.ExpiresAt())
	assert.Equal(t, []string{"fast-small"}, entitlement.AllowedModelNames(key.Plan()))

	// delivery email went out
	assert.Equal(t, []string{key.Key()}, f.email.keySends)
}

func TestConfirmPayment_DuplicateDeliveryIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createGatewayOrder(t, entitlement.PlanMonthly, "cs_test_abc")

	cmd := ConfirmPaymentCommand{TransactionRef: "cs_test_abc", ReportedAmount: 2500}

	first, err := f.confirm.Execute(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, first.Issued)

	// redeliveries succeed without issuing again
	for i := 0; i < 3; i++ {
		again, err := f.confirm.Execute(ctx, cmd)
		require.NoError(t, err)
		assert.False(t, again.Issued)
		assert.Equal(t, "approved", again.Status)
	}

	// exactly one key exists for the order
	_, total, err := f.keyRepo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, f.email.keySends, 1)

	stored, err := f.orderRepo.FindByID(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.OrderStatusApproved, stored.Status())
}

func TestConfirmPayment_AmountMismatchLeavesPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createGatewayOrder(t, entitlement.PlanMonthly, "cs_test_abc")

	for i := 0; i < 2; i++ {
		_, err := f.confirm.Execute(ctx, ConfirmPaymentCommand{
			TransactionRef: "cs_test_abc",
			ReportedAmount: 999,
		})
		require.Error(t, err)
		assert.True(t, apperrors.HasReason(err, apperrors.ReasonAmountMismatch))
	}

	stored, err := f.orderRepo.FindByID(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.OrderStatusPending, stored.Status())
	assert.Nil(t, stored.IssuedKey())

	_, total, err := f.keyRepo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, f.email.keySends)
}

func TestConfirmPayment_UnknownTransactionRef(t *testing.T) {
	f := newFixture(t)

	_, err := f.confirm.Execute(context.Background(), ConfirmPaymentCommand{
		TransactionRef: "cs_test_unknown",
		ReportedAmount: 1000,
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasReason(err, apperrors.ReasonOrderNotFound))
}

func TestConfirmPayment_EmailFailureDoesNotFailConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createGatewayOrder(t, entitlement.PlanWeekly, "cs_test_abc")
	f.email.failNext = true

	result, err := f.confirm.Execute(ctx, ConfirmPaymentCommand{
		TransactionRef: "cs_test_abc",
		ReportedAmount: 1000,
	})
	require.NoError(t, err)
	assert.True(t, result.Issued)

	// the failed delivery landed in the retry queue
	entries, err := f.retryRepo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice@example.com", entries[0].Recipient())
}
