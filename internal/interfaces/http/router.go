// Package http wires handlers, middleware, and routes into the HTTP server.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/seatwise-io/seatwise/internal/infrastructure/config"
	"github.com/seatwise-io/seatwise/internal/infrastructure/ratelimit"
	"github.com/seatwise-io/seatwise/internal/interfaces/http/handlers"
	"github.com/seatwise-io/seatwise/internal/interfaces/http/middleware"
	"github.com/seatwise-io/seatwise/internal/interfaces/http/routes"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
	"github.com/seatwise-io/seatwise/internal/shared/utils"
)

// Router owns the gin engine and the handler set mounted on it.
type Router struct {
	engine                  *gin.Engine
	seatHandler             *handlers.SeatHandler
	webhookHandler          *handlers.WebhookHandler
	entitlementHandler      *handlers.EntitlementHandler
	authMiddleware          *middleware.AuthMiddleware
	rateLimitMiddleware     *middleware.RateLimitMiddleware
	tierRateLimitMiddleware *middleware.TierRateLimitMiddleware
	log                     logger.Interface
}

func NewRouter(
	seatHandler *handlers.SeatHandler,
	webhookHandler *handlers.WebhookHandler,
	entitlementHandler *handlers.EntitlementHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	tierRateLimitMiddleware *middleware.TierRateLimitMiddleware,
	log logger.Interface,
) *Router {
	return &Router{
		engine:                  gin.New(),
		seatHandler:             seatHandler,
		webhookHandler:          webhookHandler,
		entitlementHandler:      entitlementHandler,
		authMiddleware:          authMiddleware,
		rateLimitMiddleware:     rateLimitMiddleware,
		tierRateLimitMiddleware: tierRateLimitMiddleware,
		log:                     log,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes(cfg *config.Config) {
	r.engine.Use(middleware.Logger(r.log))
	r.engine.Use(middleware.Recovery())

	r.engine.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, 200, "ok", nil)
	})

	routes.SetupWebhookRoutes(r.engine, &routes.WebhookRouteConfig{
		WebhookHandler:      r.webhookHandler,
		RateLimitMiddleware: r.rateLimitMiddleware,
		WebhookLimit: ratelimit.Config{
			RequestsPerMinute: cfg.RateLimit.WebhookPerMinute,
		},
	})

	routes.SetupSeatRoutes(r.engine, &routes.SeatRouteConfig{
		SeatHandler:             r.seatHandler,
		AuthMiddleware:          r.authMiddleware,
		RateLimitMiddleware:     r.rateLimitMiddleware,
		TierRateLimitMiddleware: r.tierRateLimitMiddleware,
		SeatOpsLimit: ratelimit.Config{
			RequestsPerMinute: cfg.RateLimit.SeatOpsPerMinute,
		},
	})

	routes.SetupEntitlementRoutes(r.engine, &routes.EntitlementRouteConfig{
		EntitlementHandler: r.entitlementHandler,
		AuthMiddleware:     r.authMiddleware,
	})
}

// Engine exposes the underlying gin engine for the HTTP server.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
