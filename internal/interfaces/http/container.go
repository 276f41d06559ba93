package http

import (
	"gorm.io/gorm"

	entitlementusecases "github.com/seatwise-io/seatwise/internal/application/entitlement/usecases"
	"github.com/seatwise-io/seatwise/internal/application/notification"
	seatusecases "github.com/seatwise-io/seatwise/internal/application/seat/usecases"
	subscriptionusecases "github.com/seatwise-io/seatwise/internal/application/subscription/usecases"
	webhookproviders "github.com/seatwise-io/seatwise/internal/application/webhook/providers"
	webhookusecases "github.com/seatwise-io/seatwise/internal/application/webhook/usecases"
	"github.com/seatwise-io/seatwise/internal/infrastructure/auth"
	"github.com/seatwise-io/seatwise/internal/infrastructure/config"
	"github.com/seatwise-io/seatwise/internal/infrastructure/ratelimit"
	"github.com/seatwise-io/seatwise/internal/infrastructure/repository"
	"github.com/seatwise-io/seatwise/internal/interfaces/http/handlers"
	"github.com/seatwise-io/seatwise/internal/interfaces/http/middleware"
	sharedconfig "github.com/seatwise-io/seatwise/internal/shared/config"
	"github.com/seatwise-io/seatwise/internal/shared/db"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

// Container wires repositories, use cases, and handlers. The sweep use cases
// are exposed so the server command can register them with the scheduler.
type Container struct {
	Router *Router

	RetryUnprocessedUC    *webhookusecases.RetryUnprocessedUseCase
	ExpireSubscriptionsUC *subscriptionusecases.ExpireSubscriptionsUseCase
	ExpireEntitlementsUC  *entitlementusecases.ExpireEntitlementsUseCase
}

// BuildContainer constructs the full dependency graph from the database
// connection, the loaded configuration, and the chosen rate limiter.
func BuildContainer(database *gorm.DB, cfg *config.Config, limiter ratelimit.RateLimiter, log logger.Interface) *Container {
	subscriptionRepo := repository.NewSubscriptionRepository(database, log)
	assignmentRepo := repository.NewSeatAssignmentRepository(database, log)
	entitlementRepo := repository.NewEntitlementRepository(database, log)
	membershipRepo := repository.NewOrgMemberRepository(database, log)
	eventRepo := repository.NewWebhookEventRepository(database, log)

	txManager := db.NewTransactionManager(database)
	notifier := notification.NewLogNotifier(log)
	registry := buildProviderRegistry(&cfg.Providers)

	grantUC := entitlementusecases.NewGrantEntitlementUseCase(entitlementRepo, log)
	revokeEntitlementUC := entitlementusecases.NewRevokeEntitlementUseCase(entitlementRepo, log)
	listEntitlementsUC := entitlementusecases.NewListEntitlementsUseCase(entitlementRepo, log)

	assignSeatUC := seatusecases.NewAssignSeatUseCase(
		subscriptionRepo, assignmentRepo, entitlementRepo, membershipRepo, txManager, notifier, log)
	revokeSeatUC := seatusecases.NewRevokeSeatUseCase(
		subscriptionRepo, assignmentRepo, entitlementRepo, membershipRepo, txManager, notifier, log)
	getSeatLimitsUC := seatusecases.NewGetSeatLimitsUseCase(subscriptionRepo, log)
	listSeatsUC := seatusecases.NewListSeatsUseCase(subscriptionRepo, assignmentRepo, log)

	handleWebhookUC := webhookusecases.NewHandleWebhookUseCase(
		registry, eventRepo, subscriptionRepo, grantUC, revokeEntitlementUC, txManager, notifier, log)
	retryUnprocessedUC := webhookusecases.NewRetryUnprocessedUseCase(
		registry, eventRepo, subscriptionRepo, handleWebhookUC, log)

	expireSubscriptionsUC := subscriptionusecases.NewExpireSubscriptionsUseCase(subscriptionRepo, log)
	expireEntitlementsUC := entitlementusecases.NewExpireEntitlementsUseCase(entitlementRepo, notifier, log)

	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, log)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(limiter, log)
	tierRateLimitMiddleware := middleware.NewTierRateLimitMiddleware(limiter, subscriptionRepo, log)

	seatHandler := handlers.NewSeatHandler(assignSeatUC, revokeSeatUC, getSeatLimitsUC, listSeatsUC, log)
	webhookHandler := handlers.NewWebhookHandler(handleWebhookUC, log)
	entitlementHandler := handlers.NewEntitlementHandler(listEntitlementsUC, log)

	router := NewRouter(seatHandler, webhookHandler, entitlementHandler, authMiddleware, rateLimitMiddleware, tierRateLimitMiddleware, log)
	router.SetupRoutes(cfg)

	return &Container{
		Router:                router,
		RetryUnprocessedUC:    retryUnprocessedUC,
		ExpireSubscriptionsUC: expireSubscriptionsUC,
		ExpireEntitlementsUC:  expireEntitlementsUC,
	}
}

// buildProviderRegistry registers only the providers with credentials
// configured. Deliveries for an unregistered provider are rejected with 404.
func buildProviderRegistry(cfg *sharedconfig.ProvidersConfig) *webhookproviders.Registry {
	var list []webhookproviders.Provider
	if cfg.PayFast.MerchantID != "" {
		list = append(list, webhookproviders.NewPayFast(cfg.PayFast.MerchantID, cfg.PayFast.MerchantKey, cfg.PayFast.Passphrase))
	}
	if cfg.Paystack.SecretKey != "" {
		list = append(list, webhookproviders.NewPaystack(cfg.Paystack.SecretKey))
	}
	return webhookproviders.NewRegistry(list...)
}
