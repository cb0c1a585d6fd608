package usecases

import (
	"context"

	"keygate/internal/application/notification"
	"keygate/internal/domain/entitlement"
	"keygate/internal/domain/order"
	vo "keygate/internal/domain/order/valueobjects"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

type CreateOrderCommand struct {
	Name          string
	Email         string
	Plan          string
	Referral      string
	PaymentMethod string
	// GatewayTxRef links a gateway order to its checkout transaction when
	// checkout is created before the order record.
	GatewayTxRef string
}

type CreateOrderResult struct {
	OrderID             string `json:"order_id"`
	Status              string `json:"status"`
	Plan                string `json:"plan"`
	PaymentMethod       string `json:"payment_method"`
	ExpectedAmountCents uint64 `json:"expected_amount_cents"`
}

// CreateOrderUseCase records a purchase attempt. Manual-transfer orders
// additionally alert the administrator, since nothing else will.
type CreateOrderUseCase struct {
	orderRepo    order.Repository
	notifier     *notification.Notifier
	adminAddress string
	logger       logger.Interface
}

func NewCreateOrderUseCase(
	orderRepo order.Repository,
	notifier *notification.Notifier,
	adminAddress string,
	log logger.Interface,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo:    orderRepo,
		notifier:     notifier,
		adminAddress: adminAddress,
		logger:       log,
	}
}

func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error) {
	if cmd.Name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if cmd.Email == "" {
		return nil, apperrors.NewValidationError("email is required")
	}

	plan, err := entitlement.ParsePlan(cmd.Plan)
	if err != nil {
		return nil, entitlement.NewInvalidPlanError(cmd.Plan)
	}

	method, ok := vo.ParsePaymentMethod(cmd.PaymentMethod)
	if !ok {
		return nil, apperrors.NewValidationError("invalid payment method", cmd.PaymentMethod)
	}

	o, err := order.NewOrder(cmd.Name, cmd.Email, plan, cmd.Referral, method)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if cmd.GatewayTxRef != "" {
		if err := o.AttachGatewayTxRef(cmd.GatewayTxRef); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}

	if err := uc.orderRepo.Create(ctx, o); err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, apperrors.NewConflictError("transaction ref already registered")
		}
		return nil, apperrors.NewInternalError("failed to create order", err.Error())
	}

	uc.logger.Infow("order created",
		"order_id", o.ID(),
		"plan", plan.String(),
		"payment_method", method.String(),
	)

	if method == vo.PaymentMethodManualTransfer {
		uc.notifier.NotifyAdminOrder(ctx, uc.adminAddress, o.ID(), o.Name(), o.Email(),
			plan.String(), o.Referral())
	}

	return &CreateOrderResult{
		OrderID:             o.ID(),
		Status:              o.Status().String(),
		Plan:                plan.String(),
		PaymentMethod:       method.String(),
		ExpectedAmountCents: o.ExpectedAmountCents(),
	}, nil
}
