package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/seatwise-io/seatwise/internal/interfaces/http/handlers"
	"github.com/seatwise-io/seatwise/internal/interfaces/http/middleware"
)

// EntitlementRouteConfig contains dependencies for entitlement routes.
type EntitlementRouteConfig struct {
	EntitlementHandler *handlers.EntitlementHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

// SetupEntitlementRoutes configures the caller-scoped entitlement routes.
// Routes: /api/v1/entitlements
func SetupEntitlementRoutes(engine *gin.Engine, cfg *EntitlementRouteConfig) {
	entitlements := engine.Group("/api/v1/entitlements")
	entitlements.Use(cfg.AuthMiddleware.RequireAuth())
	{
		entitlements.GET("", cfg.EntitlementHandler.ListMine)
	}
}
