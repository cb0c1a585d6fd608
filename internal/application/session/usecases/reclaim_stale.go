package usecases

import (
	"context"
	"time"

	"keygate/internal/domain/session"
	"keygate/internal/shared/biztime"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

type ReclaimStaleCommand struct {
	// Timeout overrides the configured heartbeat timeout when positive.
	Timeout time.Duration
}

type ReclaimStaleResult struct {
	Reclaimed int64 `json:"reclaimed"`
}

// ReclaimStaleUseCase is the background sweep that frees keys held by
// crashed clients. It is an explicit operation so any scheduler or test
// can drive it.
type ReclaimStaleUseCase struct {
	sessionRepo session.Repository
	timeout     time.Duration
	now         func() time.Time
	logger      logger.Interface
}

func NewReclaimStaleUseCase(
	sessionRepo session.Repository,
	timeout time.Duration,
	log logger.Interface,
) *ReclaimStaleUseCase {
	return &ReclaimStaleUseCase{
		sessionRepo: sessionRepo,
		timeout:     timeout,
		now:         biztime.NowUTC,
		logger:      log,
	}
}

// WithClock overrides the time source for tests.
func (uc *ReclaimStaleUseCase) WithClock(now func() time.Time) *ReclaimStaleUseCase {
	uc.now = now
	return uc
}

func (uc *ReclaimStaleUseCase) Execute(ctx context.Context, cmd ReclaimStaleCommand) (*ReclaimStaleResult, error) {
	timeout := uc.timeout
	if cmd.Timeout > 0 {
		timeout = cmd.Timeout
	}

	cutoff := uc.now().Add(-timeout)
	reclaimed, err := uc.sessionRepo.DeleteStale(ctx, cutoff)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to reclaim stale sessions", err.Error())
	}

	if reclaimed > 0 {
		uc.logger.Infow("reclaimed stale sessions",
			"count", reclaimed,
			"timeout", timeout.String(),
		)
	}

	return &ReclaimStaleResult{Reclaimed: reclaimed}, nil
}
