package usecases

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/seatwise-io/seatwise/internal/application/webhook/providers"
	"github.com/seatwise-io/seatwise/internal/domain/subscription"
	"github.com/seatwise-io/seatwise/internal/domain/webhook"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

const defaultMaxAttempts = 10

// RetryUnprocessedUseCase is the periodic sweep over events that were
// recorded but whose effects were never applied (a crash between the insert
// and the transition, or a transient storage failure). The archived payload
// was signature-verified at receipt, so the sweep decodes it without
// re-verification.
type RetryUnprocessedUseCase struct {
	registry         *providers.Registry
	eventRepo        webhook.Repository
	subscriptionRepo subscription.Repository
	handleUC         *HandleWebhookUseCase
	logger           logger.Interface
}

func NewRetryUnprocessedUseCase(
	registry *providers.Registry,
	eventRepo webhook.Repository,
	subscriptionRepo subscription.Repository,
	handleUC *HandleWebhookUseCase,
	logger logger.Interface,
) *RetryUnprocessedUseCase {
	return &RetryUnprocessedUseCase{
		registry:         registry,
		eventRepo:        eventRepo,
		subscriptionRepo: subscriptionRepo,
		handleUC:         handleUC,
		logger:           logger,
	}
}

// Execute retries unprocessed events older than minAge and returns how many
// were successfully applied in this sweep.
func (uc *RetryUnprocessedUseCase) Execute(ctx context.Context, minAge time.Duration, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 50
	}

	cutoff := time.Now().UTC().Add(-minAge)
	events, err := uc.eventRepo.FindUnprocessed(ctx, cutoff, defaultMaxAttempts, batchSize)
	if err != nil {
		uc.logger.Errorw("webhook retry sweep failed to list events", "error", err)
		return 0, err
	}

	applied := 0
	for _, event := range events {
		if err := uc.retryOne(ctx, event); err != nil {
			uc.logger.Warnw("webhook retry failed",
				"provider", event.Provider(),
				"provider_event_id", event.ProviderEventID(),
				"attempts", event.Attempts(),
				"error", err,
			)
			continue
		}
		applied++
	}

	if len(events) > 0 {
		uc.logger.Infow("webhook retry sweep completed", "found", len(events), "applied", applied)
	}
	return applied, nil
}

func (uc *RetryUnprocessedUseCase) retryOne(ctx context.Context, event *webhook.Event) error {
	provider, err := uc.registry.Get(event.Provider())
	if err != nil {
		return err
	}

	n, err := provider.Decode(event.RawPayload())
	if err != nil {
		// Undecodable archives cannot succeed later either; record and move on.
		event.MarkFailed("archived payload undecodable: " + err.Error())
		return uc.eventRepo.Update(ctx, event)
	}

	sub, err := uc.subscriptionRepo.GetBySID(ctx, n.SubscriptionSID)
	if err != nil && !stderrors.Is(err, subscription.ErrNotFound) {
		return err
	}

	return uc.handleUC.process(ctx, event, sub, n)
}
