package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seatwise-io/seatwise/internal/domain/subscription"
	"github.com/seatwise-io/seatwise/internal/domain/tier"
	"github.com/seatwise-io/seatwise/internal/infrastructure/ratelimit"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
	"github.com/seatwise-io/seatwise/internal/shared/utils"
)

// TierRateLimitMiddleware enforces the subscription tier's request quota on
// subscription-scoped routes. The window is keyed per subscription, so one
// org's burst cannot consume another's allowance.
type TierRateLimitMiddleware struct {
	limiter          ratelimit.RateLimiter
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewTierRateLimitMiddleware(
	limiter ratelimit.RateLimiter,
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *TierRateLimitMiddleware {
	return &TierRateLimitMiddleware{
		limiter:          limiter,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

// LimitByTier resolves the subscription from the :sid route parameter and
// applies its tier's per-minute quota. Unknown subscriptions pass through so
// the handler can answer with its usual 404.
func (m *TierRateLimitMiddleware) LimitByTier() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := c.Param("sid")
		if sid == "" {
			c.Next()
			return
		}

		sub, err := m.subscriptionRepo.GetBySID(c.Request.Context(), sid)
		if err != nil {
			c.Next()
			return
		}

		quotas := tier.QuotasFor(sub.Tier())
		limit := quotas.RateLimitPerMinute

		key := fmt.Sprintf("tier:subscription:%d", sub.ID())
		cfg := ratelimit.Config{
			RequestsPerMinute: limit,
			RequestsPerHour:   limit * 60,
		}

		allowed, err := m.limiter.Allow(key, cfg)
		if err != nil {
			// A broken limiter must not take the API down with it.
			m.logger.Warnw("tier rate limiter unavailable, allowing request",
				"subscription_sid", sid,
				"error", err,
			)
			c.Next()
			return
		}

		remaining, err := m.limiter.GetRemaining(key, time.Minute)
		if err != nil {
			remaining = 0
		}
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10))

		if !allowed {
			m.logger.Warnw("tier rate limit exceeded",
				"subscription_sid", sid,
				"tier", sub.Tier().String(),
				"limit", limit,
			)
			c.Header("Retry-After", "60")
			utils.ErrorResponse(c, http.StatusTooManyRequests, "subscription rate limit exceeded")
			c.Abort()
			return
		}

		c.Next()
	}
}
