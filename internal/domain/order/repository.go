package order

import (
	"context"
	"time"

	vo "keygate/internal/domain/order/valueobjects"
)

// ListFilter narrows order listings for the administrative surface.
type ListFilter struct {
	Status *vo.OrderStatus
	Email  string
	Offset int
	Limit  int
}

// Repository defines the persistence contract for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, orderID string) (*Order, error)
	FindByGatewayTxRef(ctx context.Context, txRef string) (*Order, error)
	FindPending(ctx context.Context, method *vo.PaymentMethod) ([]*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, int64, error)
	Update(ctx context.Context, o *Order) error

	// ApprovePending performs the pending-to-approved transition as a
	// single compare-and-swap conditioned on the current status, so two
	// racing confirmations cannot both issue. Returns false when the
	// order was not pending, which callers treat as already handled.
	ApprovePending(ctx context.Context, orderID, issuedKey string, at time.Time) (bool, error)

	// RejectPending is the rejection counterpart of ApprovePending.
	RejectPending(ctx context.Context, orderID string, at time.Time) (bool, error)
}
