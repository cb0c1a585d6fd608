package models

import (
	"time"

	"keygate/internal/shared/constants"
)

// AccessKeyModel represents the database persistence model for access keys.
type AccessKeyModel struct {
	ID             uint    `gorm:"primarykey"`
	KeyToken       string  `gorm:"column:key_token;size:64;not null;uniqueIndex"`
	Email          string  `gorm:"size:255;not null;index"`
	Plan           string  `gorm:"size:20;not null"`
	PreferredModel *string `gorm:"size:50"`
	OrderID        string  `gorm:"size:64;index"`
	Revoked        bool    `gorm:"not null;default:false"`
	TotalRequests  uint64  `gorm:"not null;default:0"`
	LastUsedAt     *time.Time
	IssuedAt       time.Time
	ExpiresAt      time.Time `gorm:"not null;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for GORM
func (AccessKeyModel) TableName() string {
	return constants.TableAccessKeys
}
