package mappers

import (
	"fmt"

	"keygate/internal/domain/entitlement"
	"keygate/internal/infrastructure/persistence/models"
)

func AccessKeyToModel(k *entitlement.AccessKey) *models.AccessKeyModel {
	if k == nil {
		return nil
	}

	var preferred *string
	if k.PreferredModel() != nil {
		s := k.PreferredModel().String()
		preferred = &s
	}

	return &models.AccessKeyModel{
		ID:             k.ID(),
		KeyToken:       k.Key(),
		Email:          k.Email(),
		Plan:           k.Plan().String(),
		PreferredModel: preferred,
		OrderID:        k.OrderID(),
		Revoked:        k.Revoked(),
		TotalRequests:  k.TotalRequests(),
		LastUsedAt:     k.LastUsedAt(),
		IssuedAt:       k.IssuedAt(),
		ExpiresAt:      k.ExpiresAt(),
		CreatedAt:      k.CreatedAt(),
		UpdatedAt:      k.UpdatedAt(),
	}
}

func AccessKeyToDomain(model *models.AccessKeyModel) (*entitlement.AccessKey, error) {
	if model == nil {
		return nil, fmt.Errorf("access key model cannot be nil")
	}

	plan, err := entitlement.ParsePlan(model.Plan)
	if err != nil {
		return nil, fmt.Errorf("invalid plan in storage: %w", err)
	}

	var preferred *entitlement.ModelID
	if model.PreferredModel != nil {
		m := entitlement.ModelID(*model.PreferredModel)
		preferred = &m
	}

	return entitlement.ReconstructAccessKey(
		model.ID, model.KeyToken, model.Email, plan,
		preferred, model.OrderID, model.Revoked,
		model.TotalRequests, model.LastUsedAt,
		model.IssuedAt, model.ExpiresAt, model.CreatedAt, model.UpdatedAt,
	)
}
