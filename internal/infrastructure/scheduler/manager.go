// Package scheduler runs the periodic maintenance sweeps using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/seatwise-io/seatwise/internal/shared/biztime"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

// BatchJob is one sweep execution. Execute processes a batch and returns the
// number of items it handled.
type BatchJob interface {
	Execute(ctx context.Context, batchSize int) (int, error)
}

const defaultBatchSize = 100

// SchedulerManager owns all scheduled jobs in a single gocron instance.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager builds the manager with cron expressions evaluated in
// the business timezone.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterExpirySweeps registers the subscription and entitlement expiry
// sweeps. Both are idempotent catch-up jobs; status reads derive expiry from
// timestamps, so the sweeps only settle stored state for reporting.
func (m *SchedulerManager) RegisterExpirySweeps(
	expireSubscriptionsJob BatchJob,
	expireEntitlementsJob BatchJob,
	interval time.Duration,
) error {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			m.runSweep(ctx, "subscription-expiry", expireSubscriptionsJob)
			m.runSweep(ctx, "entitlement-expiry", expireEntitlementsJob)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("expiry"),
		gocron.WithName("expiry-sweeps"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered expiry sweeps", "interval", interval)
	return nil
}

// RegisterWebhookRetrySweep registers the sweep that reprocesses recorded but
// unprocessed webhook events.
func (m *SchedulerManager) RegisterWebhookRetrySweep(retryJob BatchJob, interval time.Duration) error {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			m.runSweep(ctx, "webhook-retry", retryJob)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("webhook", "retry"),
		gocron.WithName("webhook-retry-sweep"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered webhook retry sweep", "interval", interval)
	return nil
}

func (m *SchedulerManager) runSweep(ctx context.Context, name string, job BatchJob) {
	m.logger.Debugw("sweep started", "sweep", name)

	startTime := biztime.NowUTC()
	count, err := job.Execute(ctx, defaultBatchSize)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("sweep failed",
			"sweep", name,
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if count > 0 {
		m.logger.Infow("sweep completed",
			"sweep", name,
			"count", count,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("sweep found nothing to do",
			"sweep", name,
			"duration", time.Since(startTime),
		)
	}
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop shuts the scheduler down and waits for running jobs.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false
	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted reports whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}
