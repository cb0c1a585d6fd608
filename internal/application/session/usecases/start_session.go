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

type StartSessionCommand struct {
	Key string
}

type StartSessionResult struct {
	SessionID        string `json:"session_id"`
	ReplacedExisting bool   `json:"replaced_existing"`
	StartedAt        string `json:"started_at"`
}

// StartSessionUseCase claims exclusive use of a key for one device,
// displacing whatever session held the key before.
type StartSessionUseCase struct {
	keyRepo     entitlement.Repository
	sessionRepo session.Repository
	now         func() time.Time
	logger      logger.Interface
}

func NewStartSessionUseCase(
	keyRepo entitlement.Repository,
	sessionRepo session.Repository,
	log logger.Interface,
) *StartSessionUseCase {
	return &StartSessionUseCase{
		keyRepo:     keyRepo,
		sessionRepo: sessionRepo,
		now:         biztime.NowUTC,
		logger:      log,
	}
}

// WithClock overrides the time source for tests.
func (uc *StartSessionUseCase) WithClock(now func() time.Time) *StartSessionUseCase {
	uc.now = now
	return uc
}

func (uc *StartSessionUseCase) Execute(ctx context.Context, cmd StartSessionCommand) (*StartSessionResult, error) {
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
	// an expired key cannot start a new session; the grace window only
	// protects sessions that began before expiry
	if key.IsExpired(uc.now()) {
		return nil, entitlement.NewKeyExpiredError()
	}

	s, err := session.NewSession(key.Key())
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build session", err.Error())
	}

	replaced, err := uc.sessionRepo.Replace(ctx, s)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to start session", err.Error())
	}

	uc.logger.Infow("session started",
		"session_id", s.SessionID(),
		"key", key.MaskedKey(),
		"replaced_existing", replaced,
	)

	return &StartSessionResult{
		SessionID:        s.SessionID(),
		ReplacedExisting: replaced,
		StartedAt:        biztime.FormatRFC3339(s.StartedAt()),
	}, nil
}
