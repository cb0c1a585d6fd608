package usecases

import (
	"context"

	"keygate/internal/domain/entitlement"
	"keygate/internal/domain/session"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

type RevokeKeyCommand struct {
	Key     string
	AdminID string
}

type RevokeKeyResult struct {
	MaskedKey string `json:"key"`
	Revoked   bool   `json:"revoked"`
}

// RevokeKeyUseCase disables a key ahead of its natural expiry and ends
// any live session on it.
type RevokeKeyUseCase struct {
	keyRepo     entitlement.Repository
	sessionRepo session.Repository
	logger      logger.Interface
}

func NewRevokeKeyUseCase(
	keyRepo entitlement.Repository,
	sessionRepo session.Repository,
	log logger.Interface,
) *RevokeKeyUseCase {
	return &RevokeKeyUseCase{
		keyRepo:     keyRepo,
		sessionRepo: sessionRepo,
		logger:      log,
	}
}

func (uc *RevokeKeyUseCase) Execute(ctx context.Context, cmd RevokeKeyCommand) (*RevokeKeyResult, error) {
	if cmd.Key == "" {
		return nil, apperrors.NewValidationError("key is required")
	}
	// Listings only expose the first 8 characters, so revocation accepts
	// a prefix. Shorter than that risks matching the wrong key.
	if len(cmd.Key) < 8 {
		return nil, apperrors.NewValidationError("key prefix must be at least 8 characters")
	}

	key, err := uc.keyRepo.FindByPrefix(ctx, cmd.Key)
	if err != nil {
		return nil, err
	}

	key.Revoke()
	if err := uc.keyRepo.Update(ctx, key); err != nil {
		return nil, apperrors.NewInternalError("failed to revoke access key", err.Error())
	}

	// best-effort: a live session on a revoked key should not linger
	if s, err := uc.sessionRepo.FindByAccessKey(ctx, key.Key()); err == nil {
		if err := uc.sessionRepo.Delete(ctx, s.SessionID()); err != nil {
			uc.logger.Warnw("failed to end session of revoked key",
				"key", key.MaskedKey(),
				"error", err,
			)
		}
	}

	uc.logger.Infow("access key revoked",
		"key", key.MaskedKey(),
		"admin", cmd.AdminID,
	)

	return &RevokeKeyResult{MaskedKey: key.MaskedKey(), Revoked: true}, nil
}
