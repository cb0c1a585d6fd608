package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keygate/internal/domain/entitlement"
	"keygate/internal/domain/order"
	vo "keygate/internal/domain/order/valueobjects"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

func (f *fixture) createManualOrder(t *testing.T, plan entitlement.Plan) *order.Order {
	t.Helper()
	o, err := order.NewOrder("Bob", "bob@example.com", plan, "friend", vo.PaymentMethodManualTransfer)
	require.NoError(t, err)
	require.NoError(t, f.orderRepo.Create(context.Background(), o))
	return o
}

func TestApproveOrder_ManualTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := logger.NewLogger()
	approve := NewApproveOrderUseCase(f.orderRepo, f.issuer, log)

	o := f.createManualOrder(t, entitlement.PlanSemester)

	result, err := approve.Execute(ctx, ApproveOrderCommand{OrderID: o.ID(), AdminID: "admin"})
	require.NoError(t, err)
	assert.True(t, result.Issued)

	stored, err := f.orderRepo.FindByID(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.OrderStatusApproved, stored.Status())
	require.NotNil(t, stored.IssuedKey())

	key, err := f.keyRepo.FindByKey(ctx, *stored.IssuedKey())
	require.NoError(t, err)
	assert.Equal(t, entitlement.PlanSemester, key.Plan())

	// re-approval is a no-op
	again, err := approve.Execute(ctx, ApproveOrderCommand{OrderID: o.ID(), AdminID: "admin"})
	require.NoError(t, err)
	assert.False(t, again.Issued)

	_, total, err := f.keyRepo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestApproveOrder_RejectedOrderFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := logger.NewLogger()
	approve := NewApproveOrderUseCase(f.orderRepo, f.issuer, log)
	reject := NewRejectOrderUseCase(f.orderRepo, log)

	o := f.createManualOrder(t, entitlement.PlanWeekly)
	_, err := reject.Execute(ctx, RejectOrderCommand{OrderID: o.ID(), AdminID: "admin"})
	require.NoError(t, err)

	_, err = approve.Execute(ctx, ApproveOrderCommand{OrderID: o.ID(), AdminID: "admin"})
	require.Error(t, err)
	assert.True(t, apperrors.HasReason(err, apperrors.ReasonInvalidTransition))
}

func TestRejectOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := logger.NewLogger()
	reject := NewRejectOrderUseCase(f.orderRepo, log)

	o := f.createManualOrder(t, entitlement.PlanWeekly)

	result, err := reject.Execute(ctx, RejectOrderCommand{OrderID: o.ID(), AdminID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", result.Status)

	// rejecting again is an invalid transition
	_, err = reject.Execute(ctx, RejectOrderCommand{OrderID: o.ID(), AdminID: "admin"})
	require.Error(t, err)
	assert.True(t, apperrors.HasReason(err, apperrors.ReasonInvalidTransition))

	// no key was issued
	_, total, err := f.keyRepo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := logger.NewLogger()
	notifier := f.issuer.notifier
	create := NewCreateOrderUseCase(f.orderRepo, notifier, "admin@example.com", log)

	result, err := create.Execute(ctx, CreateOrderCommand{
		Name:  "Alice",
		Email: "alice@example.com",
		Plan:  "monthly",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", result.Status)
	assert.Equal(t, "manual_transfer", result.PaymentMethod)
	assert.Equal(t, uint64(2500), result.ExpectedAmountCents)

	// the admin was alerted about the manual order
	assert.Equal(t, []string{result.OrderID}, f.email.alerts)

	_, err = create.Execute(ctx, CreateOrderCommand{Name: "Alice", Email: "alice@example.com", Plan: "yearly"})
	require.Error(t, err)
	assert.True(t, apperrors.HasReason(err, apperrors.ReasonInvalidPlan))

	_, err = create.Execute(ctx, CreateOrderCommand{Email: "alice@example.com", Plan: "weekly"})
	assert.Error(t, err)
}

// rejectRacingRepo rejects the order immediately after a pending
// snapshot is read, so the caller's approval compare-and-swap lands on
// an already-rejected row. This reproduces an admin rejection arriving
// between the status check and issuance.
type rejectRacingRepo struct {
	order.Repository
}

func (r *rejectRacingRepo) FindByID(ctx context.Context, orderID string) (*order.Order, error) {
	o, err := r.Repository.FindByID(ctx, orderID)
	if err == nil && o.IsPending() {
		_, _ = r.Repository.RejectPending(ctx, o.ID(), time.Now().UTC())
	}
	return o, err
}

func (r *rejectRacingRepo) FindByGatewayTxRef(ctx context.Context, txRef string) (*order.Order, error) {
	o, err := r.Repository.FindByGatewayTxRef(ctx, txRef)
	if err == nil && o.IsPending() {
		_, _ = r.Repository.RejectPending(ctx, o.ID(), time.Now().UTC())
	}
	return o, err
}

func TestApproveOrder_ConcurrentRejectWinsRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := logger.NewLogger()
	approve := NewApproveOrderUseCase(&rejectRacingRepo{Repository: f.orderRepo}, f.issuer, log)

	o := f.createManualOrder(t, entitlement.PlanMonthly)

	result, err := approve.Execute(ctx, ApproveOrderCommand{OrderID: o.ID(), AdminID: "admin"})
	require.NoError(t, err)
	assert.False(t, result.Issued)
	assert.Equal(t, "rejected", result.Status)

	stored, err := f.orderRepo.FindByID(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.OrderStatusRejected, stored.Status())

	// no key was issued and nothing was mailed out
	_, total, err := f.keyRepo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, f.email.keySends)
}

func TestConfirmPayment_ConcurrentRejectWinsRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := logger.NewLogger()
	confirm := NewConfirmPaymentUseCase(&rejectRacingRepo{Repository: f.orderRepo}, f.issuer, log)

	o := f.createGatewayOrder(t, entitlement.PlanWeekly, "cs_test_race")

	result, err := confirm.Execute(ctx, ConfirmPaymentCommand{
		TransactionRef: "cs_test_race",
		ReportedAmount: 1000,
	})
	require.NoError(t, err)
	assert.False(t, result.Issued)
	assert.Equal(t, "rejected", result.Status)

	stored, err := f.orderRepo.FindByID(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.OrderStatusRejected, stored.Status())
	assert.Nil(t, stored.IssuedKey())
}
