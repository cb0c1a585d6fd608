package usecases

import (
	"context"

	"keygate/internal/domain/order"
	vo "keygate/internal/domain/order/valueobjects"
	"keygate/internal/shared/biztime"
	apperrors "keygate/internal/shared/errors"
)

type ListOrdersCommand struct {
	Status string
	Email  string
	Page   int
	Limit  int
}

type OrderSummary struct {
	OrderID       string  `json:"order_id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Plan          string  `json:"plan"`
	Referral      string  `json:"referral,omitempty"`
	PaymentMethod string  `json:"payment_method"`
	Status        string  `json:"status"`
	IssuedKey     *string `json:"issued_key,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type ListOrdersResult struct {
	Orders []OrderSummary `json:"orders"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

// ListOrdersUseCase backs the administrative order listing.
type ListOrdersUseCase struct {
	orderRepo order.Repository
}

func NewListOrdersUseCase(orderRepo order.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo}
}

func (uc *ListOrdersUseCase) Execute(ctx context.Context, cmd ListOrdersCommand) (*ListOrdersResult, error) {
	if cmd.Page < 1 {
		cmd.Page = 1
	}
	if cmd.Limit < 1 || cmd.Limit > 100 {
		cmd.Limit = 20
	}

	filter := order.ListFilter{
		Email:  cmd.Email,
		Offset: (cmd.Page - 1) * cmd.Limit,
		Limit:  cmd.Limit,
	}
	if cmd.Status != "" {
		status := vo.OrderStatus(cmd.Status)
		if !status.IsValid() {
			return nil, apperrors.NewValidationError("invalid order status", cmd.Status)
		}
		filter.Status = &status
	}

	orders, total, err := uc.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list orders", err.Error())
	}

	summaries := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, OrderSummary{
			OrderID:       o.ID(),
			Name:          o.Name(),
			Email:         o.Email(),
			Plan:          o.Plan().String(),
			Referral:      o.Referral(),
			PaymentMethod: o.PaymentMethod().String(),
			Status:        o.Status().String(),
			IssuedKey:     o.IssuedKey(),
			CreatedAt:     biztime.FormatRFC3339(o.CreatedAt()),
		})
	}

	return &ListOrdersResult{
		Orders: summaries,
		Total:  total,
		Page:   cmd.Page,
		Limit:  cmd.Limit,
	}, nil
}
