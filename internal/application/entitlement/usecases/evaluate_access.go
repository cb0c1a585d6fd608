package usecases

import (
	"context"
	"time"

	"keygate/internal/domain/entitlement"
	"keygate/internal/domain/session"
	"keygate/internal/shared/biztime"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

type EvaluateAccessCommand struct {
	Key            string
	RequestedModel string
	// SessionStartedAt is the client's claim of when its session began.
	// The server-recorded session start takes precedence when one exists;
	// this field is only a fallback for clients running without a
	// registered session.
	SessionStartedAt *time.Time
}

type EvaluateAccessResult struct {
	EffectiveModel string `json:"effective_model"`
}

// EvaluateAccessUseCase is the per-request gate in front of every
// metered operation: expiration, grace window, and model policy. It
// performs no writes, so it is safe to call on every request.
type EvaluateAccessUseCase struct {
	keyRepo     entitlement.Repository
	sessionRepo session.Repository
	gracePeriod time.Duration
	now         func() time.Time
	logger      logger.Interface
}

func NewEvaluateAccessUseCase(
	keyRepo entitlement.Repository,
	sessionRepo session.Repository,
	gracePeriod time.Duration,
	log logger.Interface,
) *EvaluateAccessUseCase {
	return &EvaluateAccessUseCase{
		keyRepo:     keyRepo,
		sessionRepo: sessionRepo,
		gracePeriod: gracePeriod,
		now:         biztime.NowUTC,
		logger:      log,
	}
}

// WithClock overrides the time source for tests.
func (uc *EvaluateAccessUseCase) WithClock(now func() time.Time) *EvaluateAccessUseCase {
	uc.now = now
	return uc
}

func (uc *EvaluateAccessUseCase) Execute(ctx context.Context, cmd EvaluateAccessCommand) (*EvaluateAccessResult, error) {
	if cmd.Key == "" {
		return nil, apperrors.NewValidationError("key is required")
	}

	key, err := uc.keyRepo.FindByKey(ctx, cmd.Key)
	if err != nil {
		return nil, err
	}
	if key.Revoked() {
		return nil, entitlement.NewKeyNotFoundError()
	}

	if err := uc.checkExpiration(ctx, key, cmd.SessionStartedAt); err != nil {
		return nil, err
	}

	effective := key.EffectiveModel()
	if cmd.RequestedModel != "" {
		requested := entitlement.ModelID(cmd.RequestedModel)
		if !entitlement.IsModelAllowed(key.Plan(), requested) {
			return nil, entitlement.NewModelNotAllowedError(key.Plan(), requested)
		}
		effective = requested
	}

	return &EvaluateAccessResult{EffectiveModel: effective.String()}, nil
}

// checkExpiration enforces expiry with the conditional grace window: a
// session that began while the key was still valid may run until
// expiry+grace, but a session started after expiry gets nothing, so a
// lapsed key cannot be revived by restarting the client.
func (uc *EvaluateAccessUseCase) checkExpiration(ctx context.Context, key *entitlement.AccessKey, claimedStart *time.Time) error {
	now := uc.now()
	if !key.IsExpired(now) {
		return nil
	}

	startedAt := uc.sessionStart(ctx, key.Key(), claimedStart)
	if startedAt == nil || !startedAt.Before(key.ExpiresAt()) {
		return entitlement.NewKeyExpiredError()
	}

	if key.InGracePeriod(now, uc.gracePeriod) {
		return nil
	}
	return entitlement.NewGracePeriodExpiredError()
}

// sessionStart resolves when the caller's session began, preferring the
// registry's own record over the client-supplied claim.
func (uc *EvaluateAccessUseCase) sessionStart(ctx context.Context, keyToken string, claimed *time.Time) *time.Time {
	s, err := uc.sessionRepo.FindByAccessKey(ctx, keyToken)
	if err == nil {
		startedAt := s.StartedAt()
		return &startedAt
	}
	if !apperrors.IsNotFoundError(err) {
		uc.logger.Warnw("session lookup failed during access evaluation",
			"error", err,
		)
	}
	return claimed
}
