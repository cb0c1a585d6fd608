package routes

import (
	"github.com/gin-gonic/gin"

	"keygate/internal/interfaces/http/handlers"
	"keygate/internal/interfaces/http/middleware"
)

// AdminRouteConfig holds dependencies for the operator API.
type AdminRouteConfig struct {
	AdminHandler   *handlers.AdminHandler
	AuthMiddleware *middleware.AdminAuthMiddleware
}

// SetupAdminRoutes configures the token-protected operator routes. Login
// itself stays outside the auth group.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	engine.POST("/api/admin/login", cfg.AdminHandler.Login)

	admin := engine.Group("/api/admin")
	admin.Use(cfg.AuthMiddleware.RequireAdmin())
	{
		admin.GET("/orders", cfg.AdminHandler.ListOrders)
		admin.POST("/orders/:id/approve", cfg.AdminHandler.ApproveOrder)
		admin.POST("/orders/:id/reject", cfg.AdminHandler.RejectOrder)
		admin.POST("/reconcile", cfg.AdminHandler.Reconcile)

		admin.GET("/keys", cfg.AdminHandler.ListKeys)
		admin.POST("/keys", cfg.AdminHandler.CreateKey)
		admin.POST("/keys/revoke", cfg.AdminHandler.RevokeKey)
	}
}
