package usecases

import (
	"context"

	"keygate/internal/domain/order"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

type ConfirmPaymentCommand struct {
	TransactionRef string
	ReportedAmount uint64 // smallest currency unit
}

type ConfirmPaymentResult struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	// Issued is false when the confirmation was a duplicate and the key
	// already existed.
	Issued bool `json:"issued"`
}

// ConfirmPaymentUseCase applies an authenticated payment event to the
// ledger. Duplicate delivery is a guaranteed occurrence with webhook
// gateways, so re-invocation with identical inputs must be a no-op.
type ConfirmPaymentUseCase struct {
	orderRepo order.Repository
	issuer    *KeyIssuer
	logger    logger.Interface
}

func NewConfirmPaymentUseCase(
	orderRepo order.Repository,
	issuer *KeyIssuer,
	log logger.Interface,
) *ConfirmPaymentUseCase {
	return &ConfirmPaymentUseCase{
		orderRepo: orderRepo,
		issuer:    issuer,
		logger:    log,
	}
}

func (uc *ConfirmPaymentUseCase) Execute(ctx context.Context, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error) {
	if cmd.TransactionRef == "" {
		return nil, apperrors.NewValidationError("transaction ref is required")
	}

	o, err := uc.orderRepo.FindByGatewayTxRef(ctx, cmd.TransactionRef)
	if err != nil {
		return nil, err
	}

	// success-as-noop on duplicate delivery
	if !o.IsPending() {
		uc.logger.Infow("duplicate payment confirmation ignored",
			"order_id", o.ID(),
			"status", o.Status().String(),
		)
		return &ConfirmPaymentResult{OrderID: o.ID(), Status: o.Status().String(), Issued: false}, nil
	}

	// amount mismatch leaves the order pending for human review
	if cmd.ReportedAmount != o.ExpectedAmountCents() {
		uc.logger.Warnw("payment amount mismatch",
			"order_id", o.ID(),
			"expected", o.ExpectedAmountCents(),
			"reported", cmd.ReportedAmount,
		)
		return nil, order.NewAmountMismatchError(o.ExpectedAmountCents(), cmd.ReportedAmount)
	}

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

	return &ConfirmPaymentResult{
		OrderID: o.ID(),
		Status:  status,
		Issued:  result.Issued,
	}, nil
}
