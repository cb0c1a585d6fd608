package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"keygate/internal/domain/notification"
	"keygate/internal/infrastructure/persistence/mappers"
	"keygate/internal/infrastructure/persistence/models"
	"keygate/internal/shared/db"
)

type EmailRetryRepository struct {
	db *gorm.DB
}

func NewEmailRetryRepository(database *gorm.DB) *EmailRetryRepository {
	return &EmailRetryRepository{db: database}
}

func (r *EmailRetryRepository) Create(ctx context.Context, e *notification.EmailRetryEntry) error {
	model, err := mappers.EmailRetryToModel(e)
	if err != nil {
		return err
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to enqueue email retry: %w", err)
	}

	return nil
}

func (r *EmailRetryRepository) FindAll(ctx context.Context) ([]*notification.EmailRetryEntry, error) {
	var entryModels []models.EmailRetryModel

	if err := db.GetTxFromContext(ctx, r.db).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load email retry queue: %w", err)
	}

	entries := make([]*notification.EmailRetryEntry, 0, len(entryModels))
	for i := range entryModels {
		entry, err := mappers.EmailRetryToDomain(&entryModels[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (r *EmailRetryRepository) Update(ctx context.Context, e *notification.EmailRetryEntry) error {
	model, err := mappers.EmailRetryToModel(e)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.EmailRetryModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"attempts":        model.Attempts,
			"last_attempt_at": model.LastAttemptAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update email retry entry: %w", result.Error)
	}

	return nil
}

func (r *EmailRetryRepository) Delete(ctx context.Context, dbID uint) error {
	if err := db.GetTxFromContext(ctx, r.db).
		Delete(&models.EmailRetryModel{}, dbID).Error; err != nil {
		return fmt.Errorf("failed to delete email retry entry: %w", err)
	}

	return nil
}

func (r *EmailRetryRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Where("created_at < ?", cutoff).
		Delete(&models.EmailRetryModel{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to drop expired email retries: %w", result.Error)
	}

	return result.RowsAffected, nil
}
