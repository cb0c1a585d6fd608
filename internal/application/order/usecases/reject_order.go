package usecases

import (
	"context"

	"keygate/internal/domain/order"
	vo "keygate/internal/domain/order/valueobjects"
	"keygate/internal/shared/biztime"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

type RejectOrderCommand struct {
	OrderID string
	AdminID string
}

type RejectOrderResult struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// RejectOrderUseCase closes a pending order without issuing a key.
type RejectOrderUseCase struct {
	orderRepo order.Repository
	logger    logger.Interface
}

func NewRejectOrderUseCase(orderRepo order.Repository, log logger.Interface) *RejectOrderUseCase {
	return &RejectOrderUseCase{
		orderRepo: orderRepo,
		logger:    log,
	}
}

func (uc *RejectOrderUseCase) Execute(ctx context.Context, cmd RejectOrderCommand) (*RejectOrderResult, error) {
	if cmd.OrderID == "" {
		return nil, apperrors.NewValidationError("order ID is required")
	}

	o, err := uc.orderRepo.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	won, err := uc.orderRepo.RejectPending(ctx, cmd.OrderID, biztime.NowUTC())
	if err != nil {
		return nil, apperrors.NewInternalError("failed to reject order", err.Error())
	}
	if !won {
		return nil, order.NewInvalidTransitionError(o.Status(), vo.OrderStatusRejected)
	}

	uc.logger.Infow("order rejected",
		"order_id", cmd.OrderID,
		"admin", cmd.AdminID,
	)

	return &RejectOrderResult{
		OrderID: cmd.OrderID,
		Status:  vo.OrderStatusRejected.String(),
	}, nil
}
