package models

import (
	"time"

	"gorm.io/datatypes"

	"keygate/internal/shared/constants"
)

// EmailRetryModel represents the database persistence model for queued
// email deliveries awaiting retry.
type EmailRetryModel struct {
	ID            uint           `gorm:"primarykey"`
	OrderID       string         `gorm:"size:64;not null;index"`
	Kind          string         `gorm:"size:20;not null"`
	Recipient     string         `gorm:"size:255;not null"`
	Payload       datatypes.JSON `gorm:"type:json"`
	Attempts      int            `gorm:"not null;default:0"`
	LastAttemptAt *time.Time
	CreatedAt     time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for GORM
func (EmailRetryModel) TableName() string {
	return constants.TableEmailRetryQueue
}
