package order

import (
	"fmt"
	"time"

	"keygate/internal/domain/entitlement"
	vo "keygate/internal/domain/order/valueobjects"
	"keygate/internal/shared/biztime"
	"keygate/internal/shared/id"
)

// Order is the aggregate root for one purchase attempt. It starts pending
// and reaches exactly one terminal state: approved (which issues an access
// key) or rejected (which does not).
type Order struct {
	dbID     uint
	id       string
	name     string
	email    string
	plan     entitlement.Plan
	referral string

	paymentMethod vo.PaymentMethod
	gatewayTxRef  *string

	status    vo.OrderStatus
	issuedKey *string

	approvedAt *time.Time
	rejectedAt *time.Time

	createdAt time.Time
	updatedAt time.Time
}

// NewOrder creates a pending order for a purchase attempt.
func NewOrder(name, email string, plan entitlement.Plan, referral string,
	method vo.PaymentMethod) (*Order, error) {

	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if !plan.IsValid() {
		return nil, fmt.Errorf("invalid plan: %s", plan)
	}
	if !method.IsValid() {
		return nil, fmt.Errorf("invalid payment method: %s", method)
	}

	orderID, err := id.NewOrderID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate order ID: %w", err)
	}

	now := biztime.NowUTC()
	return &Order{
		id:            orderID,
		name:          name,
		email:         email,
		plan:          plan,
		referral:      referral,
		paymentMethod: method,
		status:        vo.OrderStatusPending,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructOrder rebuilds an Order from persistence.
func ReconstructOrder(dbID uint, orderID, name, email string,
	plan entitlement.Plan, referral string, method vo.PaymentMethod,
	gatewayTxRef *string, status vo.OrderStatus, issuedKey *string,
	approvedAt, rejectedAt *time.Time, createdAt, updatedAt time.Time) (*Order, error) {

	if orderID == "" {
		return nil, fmt.Errorf("order ID cannot be empty")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid order status: %s", status)
	}

	return &Order{
		dbID:          dbID,
		id:            orderID,
		name:          name,
		email:         email,
		plan:          plan,
		referral:      referral,
		paymentMethod: method,
		gatewayTxRef:  gatewayTxRef,
		status:        status,
		issuedKey:     issuedKey,
		approvedAt:    approvedAt,
		rejectedAt:    rejectedAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}, nil
}

func (o *Order) DBID() uint {
	return o.dbID
}

func (o *Order) SetDBID(dbID uint) error {
	if o.dbID != 0 {
		return fmt.Errorf("order DB ID is already set")
	}
	if dbID == 0 {
		return fmt.Errorf("order DB ID cannot be zero")
	}
	o.dbID = dbID
	return nil
}

func (o *Order) ID() string {
	return o.id
}

func (o *Order) Name() string {
	return o.name
}

func (o *Order) Email() string {
	return o.email
}

func (o *Order) Plan() entitlement.Plan {
	return o.plan
}

func (o *Order) Referral() string {
	return o.referral
}

func (o *Order) PaymentMethod() vo.PaymentMethod {
	return o.paymentMethod
}

func (o *Order) GatewayTxRef() *string {
	return o.gatewayTxRef
}

func (o *Order) Status() vo.OrderStatus {
	return o.status
}

func (o *Order) IssuedKey() *string {
	return o.issuedKey
}

func (o *Order) ApprovedAt() *time.Time {
	return o.approvedAt
}

func (o *Order) RejectedAt() *time.Time {
	return o.rejectedAt
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// ExpectedAmountCents returns the payment amount this order's plan costs.
func (o *Order) ExpectedAmountCents() uint64 {
	return o.plan.PriceCents()
}

func (o *Order) IsPending() bool {
	return o.status == vo.OrderStatusPending
}

func (o *Order) IsApproved() bool {
	return o.status == vo.OrderStatusApproved
}

// AttachGatewayTxRef links the order to a gateway transaction. Only
// meaningful for gateway orders, set once when checkout begins.
func (o *Order) AttachGatewayTxRef(txRef string) error {
	if o.paymentMethod != vo.PaymentMethodGateway {
		return fmt.Errorf("cannot attach transaction ref to a %s order", o.paymentMethod)
	}
	if o.gatewayTxRef != nil {
		return fmt.Errorf("transaction ref is already set")
	}
	if txRef == "" {
		return fmt.Errorf("transaction ref cannot be empty")
	}
	o.gatewayTxRef = &txRef
	o.updatedAt = biztime.NowUTC()
	return nil
}

// Approve transitions the order to approved and records the issued key.
// Approving an already-approved order is a no-op so that duplicate
// delivery of a payment confirmation never double-issues.
func (o *Order) Approve(issuedKey string) error {
	if o.status == vo.OrderStatusApproved {
		return nil
	}
	if o.status != vo.OrderStatusPending {
		return NewInvalidTransitionError(o.status, vo.OrderStatusApproved)
	}
	if issuedKey == "" {
		return fmt.Errorf("issued key cannot be empty")
	}

	now := biztime.NowUTC()
	o.status = vo.OrderStatusApproved
	o.issuedKey = &issuedKey
	o.approvedAt = &now
	o.updatedAt = now
	return nil
}

// Reject transitions the order to rejected. Only valid from pending.
func (o *Order) Reject() error {
	if o.status != vo.OrderStatusPending {
		return NewInvalidTransitionError(o.status, vo.OrderStatusRejected)
	}

	now := biztime.NowUTC()
	o.status = vo.OrderStatusRejected
	o.rejectedAt = &now
	o.updatedAt = now
	return nil
}
