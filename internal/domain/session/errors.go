package session

import apperrors "keygate/internal/shared/errors"

// NewSessionNotFoundError reports a session that has ended, been
// displaced by another device, or been reclaimed by the stale sweep.
func NewSessionNotFoundError() *apperrors.AppError {
	return apperrors.NewNotFoundError("session not found").
		WithReason(apperrors.ReasonSessionNotFound)
}
