package valueobjects

// OrderStatus represents the lifecycle state of an order. Both approved
// and rejected are terminal; an order reaches a terminal state exactly
// once and is never mutated afterwards.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusRejected OrderStatus = "rejected"
)

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusRejected:
		return true
	}
	return false
}

func (s OrderStatus) IsFinal() bool {
	return s == OrderStatusApproved || s == OrderStatusRejected
}
