package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seatwise-io/seatwise/internal/infrastructure/ratelimit"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
	"github.com/seatwise-io/seatwise/internal/shared/utils"
)

// RateLimitMiddleware enforces per-client limits for a route class. Webhook
// routes are keyed by client IP; authenticated routes by user ID.
type RateLimitMiddleware struct {
	limiter ratelimit.RateLimiter
	logger  logger.Interface
}

func NewRateLimitMiddleware(limiter ratelimit.RateLimiter, logger logger.Interface) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
	}
}

// LimitByIP keys the window on the client IP. Used on unauthenticated routes.
func (m *RateLimitMiddleware) LimitByIP(class string, cfg ratelimit.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:ip:%s", class, c.ClientIP())
		m.enforce(c, key, cfg)
	}
}

// LimitByUser keys the window on the authenticated user. Must run after
// RequireAuth.
func (m *RateLimitMiddleware) LimitByUser(class string, cfg ratelimit.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserIDFromContext(c)
		if !ok {
			key := fmt.Sprintf("%s:ip:%s", class, c.ClientIP())
			m.enforce(c, key, cfg)
			return
		}
		key := fmt.Sprintf("%s:user:%d", class, userID)
		m.enforce(c, key, cfg)
	}
}

func (m *RateLimitMiddleware) enforce(c *gin.Context, key string, cfg ratelimit.Config) {
	allowed, err := m.limiter.Allow(key, cfg)
	if err != nil {
		// A broken limiter must not take the API down with it.
		m.logger.Warnw("rate limiter unavailable, allowing request", "error", err)
		c.Next()
		return
	}

	if !allowed {
		utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
		c.Abort()
		return
	}

	c.Next()
}
