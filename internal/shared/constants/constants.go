package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderAuthorization = "Authorization"

	// Context keys
	ContextKeyAdmin = "admin"

	// Database table names
	TableAccessKeys      = "access_keys"
	TableOrders          = "orders"
	TableSessions        = "sessions"
	TableEmailRetryQueue = "email_retry_queue"
)
