package models

import (
	"time"

	"keygate/internal/shared/constants"
)

// OrderModel represents the database persistence model for orders.
type OrderModel struct {
	ID            uint    `gorm:"primarykey"`
	OrderID       string  `gorm:"column:order_id;size:64;not null;uniqueIndex"`
	Name          string  `gorm:"size:255;not null"`
	Email         string  `gorm:"size:255;not null;index"`
	Plan          string  `gorm:"size:20;not null"`
	Referral      string  `gorm:"size:255"`
	PaymentMethod string  `gorm:"size:20;not null"`
	GatewayTxRef  *string `gorm:"size:128;uniqueIndex"`
	Status        string  `gorm:"size:20;not null;index"`
	IssuedKey     *string `gorm:"size:64"`
	ApprovedAt    *time.Time
	RejectedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (OrderModel) TableName() string {
	return constants.TableOrders
}
