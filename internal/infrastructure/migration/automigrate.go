package migration

import (
	"keygate/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists every persistence model the auto-migrate
// strategy manages.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.AccessKeyModel{},
		&models.OrderModel{},
		&models.SessionModel{},
		&models.EmailRetryModel{},
	}
}
