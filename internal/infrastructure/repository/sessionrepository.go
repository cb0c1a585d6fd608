package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"keygate/internal/domain/session"
	"keygate/internal/infrastructure/persistence/mappers"
	"keygate/internal/infrastructure/persistence/models"
	"keygate/internal/shared/db"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(database *gorm.DB) *SessionRepository {
	return &SessionRepository{db: database}
}

// Replace deletes any existing session for the key and inserts the new
// one inside a single transaction. The unique index on access_key makes
// a racing insert fail rather than leave two rows behind.
func (r *SessionRepository) Replace(ctx context.Context, s *session.Session) (bool, error) {
	model := mappers.SessionToModel(s)
	replaced := false

	err := db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("access_key = ?", model.AccessKey).
			Delete(&models.SessionModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to clear prior session: %w", result.Error)
		}
		replaced = result.RowsAffected > 0

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	return replaced, nil
}

func (r *SessionRepository) FindBySessionID(ctx context.Context, sessionID string) (*session.Session, error) {
	var model models.SessionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("session_id = ?", sessionID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.NewSessionNotFoundError()
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return mappers.SessionToDomain(&model)
}

func (r *SessionRepository) FindByAccessKey(ctx context.Context, accessKey string) (*session.Session, error) {
	var model models.SessionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("access_key = ?", accessKey).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.NewSessionNotFoundError()
		}
		return nil, fmt.Errorf("failed to find session by key: %w", err)
	}

	return mappers.SessionToDomain(&model)
}

func (r *SessionRepository) Heartbeat(ctx context.Context, sessionID string, at time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SessionModel{}).
		Where("session_id = ?", sessionID).
		Update("last_heartbeat_at", at)

	if result.Error != nil {
		return false, fmt.Errorf("failed to record heartbeat: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := db.GetTxFromContext(ctx, r.db).
		Where("session_id = ?", sessionID).
		Delete(&models.SessionModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// DeleteStale removes sessions by comparing the stored heartbeat against
// the cutoff in the delete itself, so a heartbeat committing concurrently
// keeps its row.
func (r *SessionRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Where("last_heartbeat_at < ?", cutoff).
		Delete(&models.SessionModel{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to reclaim stale sessions: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *SessionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SessionModel{}).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}
