// Package server implements the HTTP server command.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	webhookusecases "github.com/seatwise-io/seatwise/internal/application/webhook/usecases"
	"github.com/seatwise-io/seatwise/internal/infrastructure/config"
	"github.com/seatwise-io/seatwise/internal/infrastructure/database"
	"github.com/seatwise-io/seatwise/internal/infrastructure/migration"
	"github.com/seatwise-io/seatwise/internal/infrastructure/ratelimit"
	"github.com/seatwise-io/seatwise/internal/infrastructure/scheduler"
	httpRouter "github.com/seatwise-io/seatwise/internal/interfaces/http"
	"github.com/seatwise-io/seatwise/internal/shared/biztime"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the seatwise HTTP server with the specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup (not recommended for production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = mapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	logger.Info("starting server", "environment", env, "auto_migrate", autoMigrate)

	if err := biztime.Init(cfg.Timezone); err != nil {
		return fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer database.Close()

	if autoMigrate {
		if env == "production" {
			logger.Warn("auto-migration is enabled in production environment")
		}
		manager := migration.NewManager(env)
		if err := manager.Migrate(database.Get(), migration.AutoMigrateModels()...); err != nil {
			logger.Fatal("migration failed", "error", err)
		}
		logger.Info("migrations applied", "strategy", manager.GetStrategy().GetName())
	}

	limiter := buildRateLimiter(cfg, log)

	container := httpRouter.BuildContainer(database.Get(), cfg, limiter, log)

	sched, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		logger.Fatal("failed to create scheduler", "error", err)
	}

	expiryInterval := time.Duration(cfg.Subscription.ExpirySweepHours) * time.Hour
	if err := sched.RegisterExpirySweeps(container.ExpireSubscriptionsUC, container.ExpireEntitlementsUC, expiryInterval); err != nil {
		logger.Fatal("failed to register expiry sweeps", "error", err)
	}

	retryInterval := time.Duration(cfg.Subscription.WebhookRetrySweepMinutes) * time.Minute
	retryJob := &webhookRetryJob{uc: container.RetryUnprocessedUC, minAge: retryInterval}
	if err := sched.RegisterWebhookRetrySweep(retryJob, retryInterval); err != nil {
		logger.Fatal("failed to register webhook retry sweep", "error", err)
	}

	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			logger.Error("failed to stop scheduler", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      container.Router.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server exited gracefully")
	return nil
}

// webhookRetryJob adapts the retry use case to the scheduler's batch job
// shape. Events younger than minAge are skipped so the sweep never races a
// delivery that is still in flight.
type webhookRetryJob struct {
	uc     *webhookusecases.RetryUnprocessedUseCase
	minAge time.Duration
}

func (j *webhookRetryJob) Execute(ctx context.Context, batchSize int) (int, error) {
	return j.uc.Execute(ctx, j.minAge, batchSize)
}

func buildRateLimiter(cfg *config.Config, log logger.Interface) ratelimit.RateLimiter {
	if !cfg.Redis.Enabled {
		logger.Info("redis disabled, using in-memory rate limiter")
		return ratelimit.NewMemoryRateLimiter()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warnw("redis unreachable, falling back to in-memory rate limiter", "error", err)
		return ratelimit.NewMemoryRateLimiter()
	}

	logger.Info("redis rate limiter enabled", "addr", cfg.Redis.GetAddr())
	return ratelimit.NewRedisRateLimiter(client)
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
