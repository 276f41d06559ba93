package usecases

import (
	"context"

	"github.com/seatwise-io/seatwise/internal/domain/subscription"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

// ExpireSubscriptionsUseCase is the periodic sweep that marks subscriptions
// whose period end has lapsed. Expiry is derived from period_end, never from
// provider events, so a provider that goes quiet cannot leave a subscription
// active forever.
type ExpireSubscriptionsUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewExpireSubscriptionsUseCase(subscriptionRepo subscription.Repository, logger logger.Interface) *ExpireSubscriptionsUseCase {
	return &ExpireSubscriptionsUseCase{subscriptionRepo: subscriptionRepo, logger: logger}
}

// Execute returns the number of subscriptions expired in this sweep.
func (uc *ExpireSubscriptionsUseCase) Execute(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	lapsed, err := uc.subscriptionRepo.FindExpired(ctx, batchSize)
	if err != nil {
		uc.logger.Errorw("subscription expiry sweep failed", "error", err)
		return 0, err
	}

	expired := 0
	for _, sub := range lapsed {
		if err := sub.MarkExpired(); err != nil {
			uc.logger.Warnw("cannot expire subscription",
				"subscription_sid", sub.SID(),
				"status", sub.Status(),
				"error", err,
			)
			continue
		}
		if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			uc.logger.Errorw("failed to persist expiry",
				"subscription_sid", sub.SID(),
				"error", err,
			)
			continue
		}
		expired++
	}

	if expired > 0 {
		uc.logger.Infow("subscription expiry sweep completed", "expired", expired)
	}
	return expired, nil
}
