package usecases

import (
	"context"
	"time"

	"keygate/internal/domain/entitlement"
	"keygate/internal/shared/biztime"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

type ValidateKeyCommand struct {
	Key string
}

type ValidateKeyResult struct {
	Valid          bool     `json:"valid"`
	Plan           string   `json:"plan,omitempty"`
	AllowedModels  []string `json:"allowed_models,omitempty"`
	PreferredModel string   `json:"preferred_model,omitempty"`
	ExpiresAt      string   `json:"expires_at,omitempty"`
	Reason         string   `json:"reason,omitempty"`
}

// ValidateKeyUseCase answers the login-time key check. Denials are
// expected outcomes and come back as a structured result, not an error.
type ValidateKeyUseCase struct {
	keyRepo entitlement.Repository
	now     func() time.Time
	logger  logger.Interface
}

func NewValidateKeyUseCase(keyRepo entitlement.Repository, log logger.Interface) *ValidateKeyUseCase {
	return &ValidateKeyUseCase{
		keyRepo: keyRepo,
		now:     biztime.NowUTC,
		logger:  log,
	}
}

// WithClock overrides the time source for tests.
func (uc *ValidateKeyUseCase) WithClock(now func() time.Time) *ValidateKeyUseCase {
	uc.now = now
	return uc
}

func (uc *ValidateKeyUseCase) Execute(ctx context.Context, cmd ValidateKeyCommand) (*ValidateKeyResult, error) {
	if cmd.Key == "" {
		return nil, apperrors.NewValidationError("key is required")
	}

	key, err := uc.keyRepo.FindByKey(ctx, cmd.Key)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return &ValidateKeyResult{Valid: false, Reason: apperrors.ReasonInvalidKey}, nil
		}
		return nil, err
	}

	if key.Revoked() {
		return &ValidateKeyResult{Valid: false, Reason: apperrors.ReasonInvalidKey}, nil
	}
	if key.IsExpired(uc.now()) {
		return &ValidateKeyResult{Valid: false, Reason: apperrors.ReasonKeyExpired}, nil
	}

	return &ValidateKeyResult{
		Valid:          true,
		Plan:           key.Plan().String(),
		AllowedModels:  entitlement.AllowedModelNames(key.Plan()),
		PreferredModel: key.EffectiveModel().String(),
		ExpiresAt:      biztime.FormatRFC3339(key.ExpiresAt()),
	}, nil
}
