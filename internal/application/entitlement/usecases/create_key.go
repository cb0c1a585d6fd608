package usecases

import (
	"context"

	"keygate/internal/domain/entitlement"
	"keygate/internal/shared/biztime"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

type CreateKeyCommand struct {
	Email   string
	Plan    string
	AdminID string
}

type CreateKeyResult struct {
	Key       string `json:"key"`
	Plan      string `json:"plan"`
	ExpiresAt string `json:"expires_at"`
}

// CreateKeyUseCase issues a key outside the order flow, an administrative
// escape hatch for comped or replacement keys.
type CreateKeyUseCase struct {
	keyRepo entitlement.Repository
	logger  logger.Interface
}

func NewCreateKeyUseCase(keyRepo entitlement.Repository, log logger.Interface) *CreateKeyUseCase {
	return &CreateKeyUseCase{
		keyRepo: keyRepo,
		logger:  log,
	}
}

func (uc *CreateKeyUseCase) Execute(ctx context.Context, cmd CreateKeyCommand) (*CreateKeyResult, error) {
	if cmd.Email == "" {
		return nil, apperrors.NewValidationError("email is required")
	}

	plan, err := entitlement.ParsePlan(cmd.Plan)
	if err != nil {
		return nil, entitlement.NewInvalidPlanError(cmd.Plan)
	}

	key, err := entitlement.NewAccessKey(cmd.Email, plan, "")
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := uc.keyRepo.Create(ctx, key); err != nil {
		return nil, apperrors.NewInternalError("failed to create access key", err.Error())
	}

	uc.logger.Infow("access key created by admin",
		"key", key.MaskedKey(),
		"plan", plan.String(),
		"admin", cmd.AdminID,
	)

	return &CreateKeyResult{
		Key:       key.Key(),
		Plan:      plan.String(),
		ExpiresAt: biztime.FormatRFC3339(key.ExpiresAt()),
	}, nil
}
