package usecases

import (
	"context"

	"keygate/internal/domain/session"
	"keygate/internal/shared/biztime"
	apperrors "keygate/internal/shared/errors"
)

type HeartbeatSessionCommand struct {
	SessionID string
}

type HeartbeatSessionResult struct {
	OK bool `json:"ok"`
}

// HeartbeatSessionUseCase refreshes a session's liveness. A missing
// session means the caller was displaced or reclaimed and must stop.
type HeartbeatSessionUseCase struct {
	sessionRepo session.Repository
}

func NewHeartbeatSessionUseCase(sessionRepo session.Repository) *HeartbeatSessionUseCase {
	return &HeartbeatSessionUseCase{sessionRepo: sessionRepo}
}

func (uc *HeartbeatSessionUseCase) Execute(ctx context.Context, cmd HeartbeatSessionCommand) (*HeartbeatSessionResult, error) {
	if cmd.SessionID == "" {
		return nil, apperrors.NewValidationError("session ID is required")
	}

	ok, err := uc.sessionRepo.Heartbeat(ctx, cmd.SessionID, biztime.NowUTC())
	if err != nil {
		return nil, apperrors.NewInternalError("failed to record heartbeat", err.Error())
	}
	if !ok {
		return nil, session.NewSessionNotFoundError()
	}

	return &HeartbeatSessionResult{OK: true}, nil
}
