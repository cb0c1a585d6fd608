package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"keygate/internal/domain/notification"
	"keygate/internal/infrastructure/persistence/models"
)

func EmailRetryToModel(e *notification.EmailRetryEntry) (*models.EmailRetryModel, error) {
	if e == nil {
		return nil, fmt.Errorf("email retry entry cannot be nil")
	}

	payload, err := json.Marshal(e.Payload())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal email payload: %w", err)
	}

	return &models.EmailRetryModel{
		ID:            e.DBID(),
		OrderID:       e.OrderID(),
		Kind:          string(e.Kind()),
		Recipient:     e.Recipient(),
		Payload:       datatypes.JSON(payload),
		Attempts:      e.Attempts(),
		LastAttemptAt: e.LastAttemptAt(),
		CreatedAt:     e.CreatedAt(),
	}, nil
}

func EmailRetryToDomain(model *models.EmailRetryModel) (*notification.EmailRetryEntry, error) {
	if model == nil {
		return nil, fmt.Errorf("email retry model cannot be nil")
	}

	payload := make(map[string]string)
	if len(model.Payload) > 0 {
		if err := json.Unmarshal(model.Payload, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal email payload: %w", err)
		}
	}

	return notification.ReconstructEmailRetryEntry(
		model.ID, model.OrderID, notification.EmailKind(model.Kind),
		model.Recipient, payload, model.Attempts,
		model.CreatedAt, model.LastAttemptAt,
	)
}
