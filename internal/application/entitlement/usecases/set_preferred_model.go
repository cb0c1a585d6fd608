package usecases

import (
	"context"

	"keygate/internal/domain/entitlement"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

type SetPreferredModelCommand struct {
	Key   string
	Model string
}

type SetPreferredModelResult struct {
	PreferredModel string `json:"preferred_model"`
}

// SetPreferredModelUseCase stores a model preference. The policy check
// and the write are atomic: the update is conditioned on the plan the
// policy was validated against, and plans never change after issuance.
type SetPreferredModelUseCase struct {
	keyRepo entitlement.Repository
	logger  logger.Interface
}

func NewSetPreferredModelUseCase(keyRepo entitlement.Repository, log logger.Interface) *SetPreferredModelUseCase {
	return &SetPreferredModelUseCase{
		keyRepo: keyRepo,
		logger:  log,
	}
}

func (uc *SetPreferredModelUseCase) Execute(ctx context.Context, cmd SetPreferredModelCommand) (*SetPreferredModelResult, error) {
	if cmd.Key == "" {
		return nil, apperrors.NewValidationError("key is required")
	}
	if cmd.Model == "" {
		return nil, apperrors.NewValidationError("model is required")
	}

	key, err := uc.keyRepo.FindByKey(ctx, cmd.Key)
	if err != nil {
		return nil, err
	}
	if key.Revoked() {
		return nil, entitlement.NewKeyNotFoundError()
	}

	model := entitlement.ModelID(cmd.Model)
	if !entitlement.IsModelAllowed(key.Plan(), model) {
		return nil, entitlement.NewModelNotAllowedError(key.Plan(), model)
	}

	updated, err := uc.keyRepo.UpdatePreferredModel(ctx, cmd.Key, key.Plan(), model)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to store model preference", err.Error())
	}
	if !updated {
		return nil, entitlement.NewKeyNotFoundError()
	}

	uc.logger.Infow("model preference updated",
		"key", key.MaskedKey(),
		"model", model.String(),
	)

	return &SetPreferredModelResult{PreferredModel: model.String()}, nil
}
