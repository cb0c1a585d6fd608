package usecases

import (
	"context"

	"keygate/internal/domain/order"
	vo "keygate/internal/domain/order/valueobjects"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

type ApproveOrderCommand struct {
	OrderID string
	// AdminID records who performed the approval for the audit trail.
	AdminID string
}

type ApproveOrderResult struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Issued  bool   `json:"issued"`
}

// ApproveOrderUseCase is the administrative approval path, used for
// manual-transfer orders where trust is established out-of-band. It
// performs the same issuance as payment confirmation but skips the
// amount check.
type ApproveOrderUseCase struct {
	orderRepo order.Repository
	issuer    *KeyIssuer
	logger    logger.Interface
}

func NewApproveOrderUseCase(
	orderRepo order.Repository,
	issuer *KeyIssuer,
	log logger.Interface,
) *ApproveOrderUseCase {
	return &ApproveOrderUseCase{
		orderRepo: orderRepo,
		issuer:    issuer,
		logger:    log,
	}
}

func (uc *ApproveOrderUseCase) Execute(ctx context.Context, cmd ApproveOrderCommand) (*ApproveOrderResult, error) {
	if cmd.OrderID == "" {
		return nil, apperrors.NewValidationError("order ID is required")
	}

	o, err := uc.orderRepo.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if o.IsApproved() {
		return &ApproveOrderResult{OrderID: o.ID(), Status: o.Status().String(), Issued: false}, nil
	}
	if !o.IsPending() {
		return nil, order.NewInvalidTransitionError(o.Status(), vo.OrderStatusApproved)
	}

	uc.logger.Infow("manual order approval",
		"order_id", o.ID(),
		"admin", cmd.AdminID,
	)

	result, err := uc.issuer.Issue(ctx, o)
	if err != nil {
		return nil, err
	}

	status := "approved"
	if !result.Issued {
		// lost the race; report whichever terminal state won it
		current, err := uc.orderRepo.FindByID(ctx, o.ID())
		if err != nil {
			return nil, err
		}
		status = current.Status().String()
	}

	return &ApproveOrderResult{
		OrderID: o.ID(),
		Status:  status,
		Issued:  result.Issued,
	}, nil
}
