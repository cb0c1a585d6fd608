package usecases

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keygate/internal/application/order/gateway"
	"keygate/internal/domain/entitlement"
	vo "keygate/internal/domain/order/valueobjects"
	"keygate/internal/shared/logger"
)

type fakeGateway struct {
	states map[string]*gateway.PaymentState
}

func (g *fakeGateway) VerifyCallback(req *http.Request) (*gateway.CallbackEvent, error) {
	return nil, fmt.Errorf("not used")
}

func (g *fakeGateway) QueryPayment(ctx context.Context, txRef string) (*gateway.PaymentState, error) {
	state, ok := g.states[txRef]
	if !ok {
		return nil, fmt.Errorf("gateway has no transaction %s", txRef)
	}
	return state, nil
}

func TestReconcileOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := logger.NewLogger()

	paid := f.createGatewayOrder(t, entitlement.PlanWeekly, "cs_paid")
	unpaid := f.createGatewayOrder(t, entitlement.PlanWeekly, "cs_unpaid")
	mismatch := f.createGatewayOrder(t, entitlement.PlanMonthly, "cs_short")
	approved := f.createGatewayOrder(t, entitlement.PlanWeekly, "cs_done")

	_, err := f.confirm.Execute(ctx, ConfirmPaymentCommand{TransactionRef: "cs_done", ReportedAmount: 1000})
	require.NoError(t, err)

	gw := &fakeGateway{states: map[string]*gateway.PaymentState{
		"cs_paid":   {TransactionRef: "cs_paid", Paid: true, Amount: 1000},
		"cs_unpaid": {TransactionRef: "cs_unpaid", Paid: false},
		"cs_short":  {TransactionRef: "cs_short", Paid: true, Amount: 999},
	}}
	reconcile := NewReconcileOrdersUseCase(f.orderRepo, gw, f.issuer, log)

	result, err := reconcile.Execute(ctx, ReconcileOrdersCommand{AdminID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewlyApproved)
	assert.Equal(t, 1, result.StillUnpaid)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 0, result.AlreadyApproved) // cs_done is no longer pending

	stored, err := f.orderRepo.FindByID(ctx, paid.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.OrderStatusApproved, stored.Status())

	stillPending, err := f.orderRepo.FindByID(ctx, unpaid.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.OrderStatusPending, stillPending.Status())

	shortOrder, err := f.orderRepo.FindByID(ctx, mismatch.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.OrderStatusPending, shortOrder.Status())

	// a repeat pass finds nothing new to do
	again, err := reconcile.Execute(ctx, ReconcileOrdersCommand{AdminID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, 0, again.NewlyApproved)
	assert.Equal(t, 1, again.StillUnpaid)
	assert.Equal(t, 1, again.Errors)

	// single-order reconcile on the already approved order
	single, err := reconcile.Execute(ctx, ReconcileOrdersCommand{OrderID: approved.ID(), AdminID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, 1, single.AlreadyApproved)
}
