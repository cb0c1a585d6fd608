package usecases

import (
	"context"

	"keygate/internal/domain/session"
	apperrors "keygate/internal/shared/errors"
)

type EndSessionCommand struct {
	SessionID string
}

type EndSessionResult struct {
	OK bool `json:"ok"`
}

// EndSessionUseCase releases a key's session. Ending an already-gone
// session succeeds; clients call this best-effort on shutdown.
type EndSessionUseCase struct {
	sessionRepo session.Repository
}

func NewEndSessionUseCase(sessionRepo session.Repository) *EndSessionUseCase {
	return &EndSessionUseCase{sessionRepo: sessionRepo}
}

func (uc *EndSessionUseCase) Execute(ctx context.Context, cmd EndSessionCommand) (*EndSessionResult, error) {
	if cmd.SessionID == "" {
		return nil, apperrors.NewValidationError("session ID is required")
	}

	if err := uc.sessionRepo.Delete(ctx, cmd.SessionID); err != nil {
		return nil, apperrors.NewInternalError("failed to end session", err.Error())
	}

	return &EndSessionResult{OK: true}, nil
}
