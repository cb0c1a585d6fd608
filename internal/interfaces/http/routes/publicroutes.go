package routes

import (
	"github.com/gin-gonic/gin"

	"keygate/internal/interfaces/http/handlers"
	"keygate/internal/interfaces/http/middleware"
)

// PublicRouteConfig holds dependencies for the unauthenticated API.
type PublicRouteConfig struct {
	OrderHandler   *handlers.OrderHandler
	AccessHandler  *handlers.AccessHandler
	SessionHandler *handlers.SessionHandler
	HealthHandler  *handlers.HealthHandler
	IPRateLimiter  *middleware.IPRateLimiter // may be nil when Redis is disabled
}

// SetupPublicRoutes configures the customer-facing routes.
func SetupPublicRoutes(engine *gin.Engine, cfg *PublicRouteConfig) {
	engine.GET("/health", cfg.HealthHandler.Health)

	api := engine.Group("/api")
	if cfg.IPRateLimiter != nil {
		api.Use(cfg.IPRateLimiter.Limit())
	}
	{
		api.POST("/orders", cfg.OrderHandler.CreateOrder)
		api.POST("/payments/webhook", cfg.OrderHandler.PaymentWebhook)

		api.POST("/validate", cfg.AccessHandler.ValidateKey)
		api.POST("/evaluate", cfg.AccessHandler.EvaluateAccess)
		api.POST("/preference", cfg.AccessHandler.SetPreference)

		api.POST("/session/start", cfg.SessionHandler.StartSession)
		api.POST("/session/heartbeat", cfg.SessionHandler.Heartbeat)
		api.POST("/session/end", cfg.SessionHandler.EndSession)
	}
}
