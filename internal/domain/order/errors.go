package order

import (
	"fmt"

	vo "keygate/internal/domain/order/valueobjects"
	apperrors "keygate/internal/shared/errors"
)

// NewOrderNotFoundError reports an unknown order or transaction ref.
func NewOrderNotFoundError(ref string) *apperrors.AppError {
	return apperrors.NewNotFoundError("order not found", ref).
		WithReason(apperrors.ReasonOrderNotFound)
}

// NewAmountMismatchError reports a confirmed payment whose amount does
// not match the plan price. The order stays pending for human review.
func NewAmountMismatchError(expected, reported uint64) *apperrors.AppError {
	return apperrors.NewConflictError(
		"payment amount does not match plan price",
		fmt.Sprintf("expected %d, reported %d", expected, reported)).
		WithReason(apperrors.ReasonAmountMismatch)
}

// NewInvalidTransitionError reports an attempt to move an order out of a
// terminal state.
func NewInvalidTransitionError(from, to vo.OrderStatus) *apperrors.AppError {
	return apperrors.NewConflictError(
		fmt.Sprintf("cannot transition order from %s to %s", from, to)).
		WithReason(apperrors.ReasonInvalidTransition)
}
