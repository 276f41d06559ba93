// Package routes provides HTTP route configurations.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/seatwise-io/seatwise/internal/infrastructure/ratelimit"
	"github.com/seatwise-io/seatwise/internal/interfaces/http/handlers"
	"github.com/seatwise-io/seatwise/internal/interfaces/http/middleware"
)

// SeatRouteConfig contains dependencies for seat management routes.
type SeatRouteConfig struct {
	SeatHandler             *handlers.SeatHandler
	AuthMiddleware          *middleware.AuthMiddleware
	RateLimitMiddleware     *middleware.RateLimitMiddleware
	TierRateLimitMiddleware *middleware.TierRateLimitMiddleware
	SeatOpsLimit            ratelimit.Config
}

// SetupSeatRoutes configures subscription-scoped seat routes. The per-user
// limit bounds a single caller; the tier limit enforces the subscription's
// own quota across all of its callers.
// Routes: /api/v1/subscriptions/:sid/seats/*
// :sid is subscription SID (sub_xxx format)
func SetupSeatRoutes(engine *gin.Engine, cfg *SeatRouteConfig) {
	seats := engine.Group("/api/v1/subscriptions/:sid/seats")
	seats.Use(cfg.AuthMiddleware.RequireAuth())
	seats.Use(cfg.RateLimitMiddleware.LimitByUser("seat_ops", cfg.SeatOpsLimit))
	seats.Use(cfg.TierRateLimitMiddleware.LimitByTier())
	{
		seats.POST("", cfg.SeatHandler.AssignSeat)
		seats.GET("", cfg.SeatHandler.ListSeats)

		// Must come before /:user_id to avoid route conflicts.
		seats.GET("/limits", cfg.SeatHandler.GetSeatLimits)

		seats.DELETE("/:user_id", cfg.SeatHandler.RevokeSeat)
	}
}
