package entitlement

import (
	"fmt"

	apperrors "keygate/internal/shared/errors"
)

// NewKeyNotFoundError reports an unknown access key token.
func NewKeyNotFoundError() *apperrors.AppError {
	return apperrors.NewNotFoundError("access key not found").
		WithReason(apperrors.ReasonInvalidKey)
}

// NewKeyExpiredError reports a lapsed key with no qualifying grace window.
func NewKeyExpiredError() *apperrors.AppError {
	return apperrors.NewForbiddenError("access key has expired").
		WithReason(apperrors.ReasonKeyExpired)
}

// NewGracePeriodExpiredError reports a key whose grace window has closed.
func NewGracePeriodExpiredError() *apperrors.AppError {
	return apperrors.NewForbiddenError("access key grace period has expired").
		WithReason(apperrors.ReasonGracePeriodExpired)
}

// NewModelNotAllowedError reports a model tier outside the plan's allowed
// set, carrying the allowed set so the client can offer alternatives.
func NewModelNotAllowedError(plan Plan, model ModelID) *apperrors.AppError {
	return apperrors.NewForbiddenError(
		fmt.Sprintf("model %q is not allowed for plan %q", model, plan)).
		WithReason(apperrors.ReasonModelNotAllowed).
		WithAllowedModels(AllowedModelNames(plan))
}

// NewInvalidPlanError reports a plan outside the enumerated tiers.
func NewInvalidPlanError(raw string) *apperrors.AppError {
	return apperrors.NewValidationError(
		fmt.Sprintf("invalid plan: %q", raw)).
		WithReason(apperrors.ReasonInvalidPlan)
}
