package usecases

import (
	"context"

	"keygate/internal/application/order/gateway"
	"keygate/internal/domain/order"
	vo "keygate/internal/domain/order/valueobjects"
	"keygate/internal/shared/logger"
)

type ReconcileOrdersCommand struct {
	// OrderID limits reconciliation to one order; empty means every
	// pending gateway order.
	OrderID string
	AdminID string
}

type ReconcileOrdersResult struct {
	AlreadyApproved int `json:"already_approved"`
	NewlyApproved   int `json:"newly_approved"`
	StillUnpaid     int `json:"still_unpaid"`
	Errors          int `json:"errors"`
}

// ReconcileOrdersUseCase queries the gateway directly for orders whose
// webhook may have been missed. Gateway calls happen outside any store
// transaction; each result is applied atomically afterwards, and the
// whole pass is safe to repeat.
type ReconcileOrdersUseCase struct {
	orderRepo order.Repository
	gateway   gateway.PaymentGateway
	issuer    *KeyIssuer
	logger    logger.Interface
}

func NewReconcileOrdersUseCase(
	orderRepo order.Repository,
	gw gateway.PaymentGateway,
	issuer *KeyIssuer,
	log logger.Interface,
) *ReconcileOrdersUseCase {
	return &ReconcileOrdersUseCase{
		orderRepo: orderRepo,
		gateway:   gw,
		issuer:    issuer,
		logger:    log,
	}
}

func (uc *ReconcileOrdersUseCase) Execute(ctx context.Context, cmd ReconcileOrdersCommand) (*ReconcileOrdersResult, error) {
	orders, err := uc.ordersToCheck(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("reconciling orders",
		"count", len(orders),
		"admin", cmd.AdminID,
	)

	result := &ReconcileOrdersResult{}
	for _, o := range orders {
		uc.reconcileOne(ctx, o, result)
	}

	return result, nil
}

func (uc *ReconcileOrdersUseCase) ordersToCheck(ctx context.Context, orderID string) ([]*order.Order, error) {
	if orderID != "" {
		o, err := uc.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return []*order.Order{o}, nil
	}

	method := vo.PaymentMethodGateway
	return uc.orderRepo.FindPending(ctx, &method)
}

func (uc *ReconcileOrdersUseCase) reconcileOne(ctx context.Context, o *order.Order, result *ReconcileOrdersResult) {
	if o.IsApproved() {
		result.AlreadyApproved++
		return
	}
	if !o.IsPending() || o.PaymentMethod() != vo.PaymentMethodGateway || o.GatewayTxRef() == nil {
		result.Errors++
		uc.logger.Warnw("order not reconcilable",
			"order_id", o.ID(),
			"status", o.Status().String(),
		)
		return
	}

	state, err := uc.gateway.QueryPayment(ctx, *o.GatewayTxRef())
	if err != nil {
		result.Errors++
		uc.logger.Warnw("gateway query failed during reconcile",
			"order_id", o.ID(),
			"error", err,
		)
		return
	}

	if !state.Paid {
		result.StillUnpaid++
		return
	}

	if state.Amount != o.ExpectedAmountCents() {
		result.Errors++
		uc.logger.Warnw("reconcile found amount mismatch",
			"order_id", o.ID(),
			"expected", o.ExpectedAmountCents(),
			"reported", state.Amount,
		)
		return
	}

	issued, err := uc.issuer.Issue(ctx, o)
	if err != nil {
		result.Errors++
		uc.logger.Errorw("issuance failed during reconcile",
			"order_id", o.ID(),
			"error", err,
		)
		return
	}

	if issued.Issued {
		result.NewlyApproved++
	} else {
		result.AlreadyApproved++
	}
}
