package mappers

import (
	"fmt"

	"keygate/internal/domain/session"
	"keygate/internal/infrastructure/persistence/models"
)

func SessionToModel(s *session.Session) *models.SessionModel {
	if s == nil {
		return nil
	}

	return &models.SessionModel{
		ID:              s.DBID(),
		SessionID:       s.SessionID(),
		AccessKey:       s.AccessKey(),
		StartedAt:       s.StartedAt(),
		LastHeartbeatAt: s.LastHeartbeatAt(),
	}
}

func SessionToDomain(model *models.SessionModel) (*session.Session, error) {
	if model == nil {
		return nil, fmt.Errorf("session model cannot be nil")
	}

	return session.ReconstructSession(
		model.ID, model.SessionID, model.AccessKey,
		model.StartedAt, model.LastHeartbeatAt,
	)
}
