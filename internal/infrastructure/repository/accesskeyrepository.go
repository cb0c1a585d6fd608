package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"keygate/internal/domain/entitlement"
	"keygate/internal/infrastructure/persistence/mappers"
	"keygate/internal/infrastructure/persistence/models"
	"keygate/internal/shared/biztime"
	"keygate/internal/shared/db"
	apperrors "keygate/internal/shared/errors"
)

type AccessKeyRepository struct {
	db *gorm.DB
}

func NewAccessKeyRepository(database *gorm.DB) *AccessKeyRepository {
	return &AccessKeyRepository{db: database}
}

func (r *AccessKeyRepository) Create(ctx context.Context, key *entitlement.AccessKey) error {
	model := mappers.AccessKeyToModel(key)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create access key: %w", err)
	}

	// Write back the auto-generated ID to the domain object
	if err := key.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set access key ID: %w", err)
	}

	return nil
}

func (r *AccessKeyRepository) FindByKey(ctx context.Context, token string) (*entitlement.AccessKey, error) {
	var model models.AccessKeyModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("key_token = ?", token).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entitlement.NewKeyNotFoundError()
		}
		return nil, fmt.Errorf("failed to find access key: %w", err)
	}

	return mappers.AccessKeyToDomain(&model)
}

func (r *AccessKeyRepository) FindByPrefix(ctx context.Context, prefix string) (*entitlement.AccessKey, error) {
	var found []models.AccessKeyModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("key_token LIKE ?", prefix+"%").
		Limit(2).
		Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to find access key by prefix: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, entitlement.NewKeyNotFoundError()
	case 1:
		return mappers.AccessKeyToDomain(&found[0])
	default:
		return nil, apperrors.NewValidationError("key prefix is ambiguous, provide more characters")
	}
}

func (r *AccessKeyRepository) FindByOrderID(ctx context.Context, orderID string) (*entitlement.AccessKey, error) {
	var model models.AccessKeyModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("order_id = ?", orderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entitlement.NewKeyNotFoundError()
		}
		return nil, fmt.Errorf("failed to find access key by order: %w", err)
	}

	return mappers.AccessKeyToDomain(&model)
}

func (r *AccessKeyRepository) List(ctx context.Context, offset, limit int) ([]*entitlement.AccessKey, int64, error) {
	var keyModels []models.AccessKeyModel
	var total int64

	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Model(&models.AccessKeyModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count access keys: %w", err)
	}

	if err := tx.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&keyModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list access keys: %w", err)
	}

	keys := make([]*entitlement.AccessKey, 0, len(keyModels))
	for i := range keyModels {
		key, err := mappers.AccessKeyToDomain(&keyModels[i])
		if err != nil {
			return nil, 0, err
		}
		keys = append(keys, key)
	}

	return keys, total, nil
}

func (r *AccessKeyRepository) Update(ctx context.Context, key *entitlement.AccessKey) error {
	model := mappers.AccessKeyToModel(key)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.AccessKeyModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"preferred_model": model.PreferredModel,
			"revoked":         model.Revoked,
			"expires_at":      model.ExpiresAt,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update access key: %w", result.Error)
	}

	return nil
}

// UpdatePreferredModel writes the preference conditioned on the plan the
// caller validated against. Plans never change after issuance, so a
// matched row is guaranteed to be governed by the validated policy.
func (r *AccessKeyRepository) UpdatePreferredModel(ctx context.Context, token string, plan entitlement.Plan, model entitlement.ModelID) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.AccessKeyModel{}).
		Where("key_token = ? AND plan = ?", token, plan.String()).
		Updates(map[string]interface{}{
			"preferred_model": model.String(),
			"updated_at":      biztime.NowUTC(),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to update preferred model: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// RecordUsage bumps the request counter and last-used timestamp in one
// statement so concurrent requests never lose counts.
func (r *AccessKeyRepository) RecordUsage(ctx context.Context, token string) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.AccessKeyModel{}).
		Where("key_token = ?", token).
		Updates(map[string]interface{}{
			"total_requests": gorm.Expr("total_requests + 1"),
			"last_used_at":   biztime.NowUTC(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to record key usage: %w", result.Error)
	}

	return nil
}
