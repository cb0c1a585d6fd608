package models

import (
	"time"

	"keygate/internal/shared/constants"
)

// SessionModel represents the database persistence model for sessions.
// The unique index on AccessKey is what enforces the single active
// session per key at the storage level.
type SessionModel struct {
	ID              uint      `gorm:"primarykey"`
	SessionID       string    `gorm:"column:session_id;size:64;not null;uniqueIndex"`
	AccessKey       string    `gorm:"size:64;not null;uniqueIndex"`
	StartedAt       time.Time `gorm:"not null"`
	LastHeartbeatAt time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for GORM
func (SessionModel) TableName() string {
	return constants.TableSessions
}
