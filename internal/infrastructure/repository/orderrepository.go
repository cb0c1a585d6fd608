package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"keygate/internal/domain/order"
	vo "keygate/internal/domain/order/valueobjects"
	"keygate/internal/infrastructure/persistence/mappers"
	"keygate/internal/infrastructure/persistence/models"
	"keygate/internal/shared/db"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(database *gorm.DB) *OrderRepository {
	return &OrderRepository{db: database}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := mappers.OrderToModel(o)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := o.SetDBID(model.ID); err != nil {
		return fmt.Errorf("failed to set order DB ID: %w", err)
	}

	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (*order.Order, error) {
	var model models.OrderModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("order_id = ?", orderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.NewOrderNotFoundError(orderID)
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	return mappers.OrderToDomain(&model)
}

func (r *OrderRepository) FindByGatewayTxRef(ctx context.Context, txRef string) (*order.Order, error) {
	var model models.OrderModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("gateway_tx_ref = ?", txRef).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.NewOrderNotFoundError(txRef)
		}
		return nil, fmt.Errorf("failed to find order by transaction ref: %w", err)
	}

	return mappers.OrderToDomain(&model)
}

func (r *OrderRepository) FindPending(ctx context.Context, method *vo.PaymentMethod) ([]*order.Order, error) {
	var orderModels []models.OrderModel

	query := db.GetTxFromContext(ctx, r.db).
		Where("status = ?", vo.OrderStatusPending.String())
	if method != nil {
		query = query.Where("payment_method = ?", method.String())
	}

	if err := query.Order("created_at ASC").Find(&orderModels).Error; err != nil {
		return nil, fmt.Errorf("failed to find pending orders: %w", err)
	}

	return r.toDomainList(orderModels)
}

func (r *OrderRepository) List(ctx context.Context, filter order.ListFilter) ([]*order.Order, int64, error) {
	var orderModels []models.OrderModel
	var total int64

	query := db.GetTxFromContext(ctx, r.db).Model(&models.OrderModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	if err := query.Order("created_at DESC").
		Offset(filter.Offset).Limit(filter.Limit).
		Find(&orderModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	orders, err := r.toDomainList(orderModels)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	model := mappers.OrderToModel(o)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("order_id = ?", model.OrderID).
		Updates(map[string]interface{}{
			"gateway_tx_ref": model.GatewayTxRef,
			"status":         model.Status,
			"issued_key":     model.IssuedKey,
			"approved_at":    model.ApprovedAt,
			"rejected_at":    model.RejectedAt,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update order: %w", result.Error)
	}

	return nil
}

// ApprovePending flips pending to approved in one conditional update so
// concurrent confirmations for the same order cannot both win.
func (r *OrderRepository) ApprovePending(ctx context.Context, orderID, issuedKey string, at time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("order_id = ? AND status = ?", orderID, vo.OrderStatusPending.String()).
		Updates(map[string]interface{}{
			"status":      vo.OrderStatusApproved.String(),
			"issued_key":  issuedKey,
			"approved_at": at,
			"updated_at":  at,
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to approve order: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// RejectPending flips pending to rejected in one conditional update.
func (r *OrderRepository) RejectPending(ctx context.Context, orderID string, at time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("order_id = ? AND status = ?", orderID, vo.OrderStatusPending.String()).
		Updates(map[string]interface{}{
			"status":      vo.OrderStatusRejected.String(),
			"rejected_at": at,
			"updated_at":  at,
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to reject order: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *OrderRepository) toDomainList(orderModels []models.OrderModel) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(orderModels))
	for i := range orderModels {
		o, err := mappers.OrderToDomain(&orderModels[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
