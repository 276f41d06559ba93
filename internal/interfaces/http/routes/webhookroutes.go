package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/seatwise-io/seatwise/internal/infrastructure/ratelimit"
	"github.com/seatwise-io/seatwise/internal/interfaces/http/handlers"
	"github.com/seatwise-io/seatwise/internal/interfaces/http/middleware"
)

// WebhookRouteConfig contains dependencies for provider webhook routes.
type WebhookRouteConfig struct {
	WebhookHandler      *handlers.WebhookHandler
	RateLimitMiddleware *middleware.RateLimitMiddleware
	WebhookLimit        ratelimit.Config
}

// SetupWebhookRoutes configures the provider delivery endpoint.
// Routes: /webhooks/:provider
// The route is unauthenticated; each delivery is verified against the
// provider's signature scheme before anything is persisted.
func SetupWebhookRoutes(engine *gin.Engine, cfg *WebhookRouteConfig) {
	webhooks := engine.Group("/webhooks")
	webhooks.Use(cfg.RateLimitMiddleware.LimitByIP("webhook", cfg.WebhookLimit))
	{
		webhooks.POST("/:provider", cfg.WebhookHandler.Receive)
	}
}
