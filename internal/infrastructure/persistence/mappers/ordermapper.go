package mappers

import (
	"fmt"

	"keygate/internal/domain/entitlement"
	"keygate/internal/domain/order"
	vo "keygate/internal/domain/order/valueobjects"
	"keygate/internal/infrastructure/persistence/models"
)

func OrderToModel(o *order.Order) *models.OrderModel {
	if o == nil {
		return nil
	}

	return &models.OrderModel{
		ID:            o.DBID(),
		OrderID:       o.ID(),
		Name:          o.Name(),
		Email:         o.Email(),
		Plan:          o.Plan().String(),
		Referral:      o.Referral(),
		PaymentMethod: o.PaymentMethod().String(),
		GatewayTxRef:  o.GatewayTxRef(),
		Status:        o.Status().String(),
		IssuedKey:     o.IssuedKey(),
		ApprovedAt:    o.ApprovedAt(),
		RejectedAt:    o.RejectedAt(),
		CreatedAt:     o.CreatedAt(),
		UpdatedAt:     o.UpdatedAt(),
	}
}

func OrderToDomain(model *models.OrderModel) (*order.Order, error) {
	if model == nil {
		return nil, fmt.Errorf("order model cannot be nil")
	}

	plan, err := entitlement.ParsePlan(model.Plan)
	if err != nil {
		return nil, fmt.Errorf("invalid plan in storage: %w", err)
	}

	method := vo.PaymentMethod(model.PaymentMethod)
	if !method.IsValid() {
		return nil, fmt.Errorf("invalid payment method in storage: %s", model.PaymentMethod)
	}

	return order.ReconstructOrder(
		model.ID, model.OrderID, model.Name, model.Email,
		plan, model.Referral, method,
		model.GatewayTxRef, vo.OrderStatus(model.Status), model.IssuedKey,
		model.ApprovedAt, model.RejectedAt, model.CreatedAt, model.UpdatedAt,
	)
}
