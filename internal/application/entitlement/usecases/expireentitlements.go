package usecases

import (
	"context"
	"time"

	"github.com/seatwise-io/seatwise/internal/domain/entitlement"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

// ExpireEntitlementsUseCase is the periodic sweep over entitlements whose
// expiry has passed. Status is derived from timestamps so no state write is
// needed; the sweep exists to surface lapses to the notification channel and
// the logs.
type ExpireEntitlementsUseCase struct {
	entitlementRepo entitlement.Repository
	notifier        LapseNotifier
	logger          logger.Interface
}

// LapseNotifier delivers best-effort notifications about lapsed entitlements.
type LapseNotifier interface {
	NotifyEntitlementLapsed(ctx context.Context, ent *entitlement.Entitlement) error
}

func NewExpireEntitlementsUseCase(
	entitlementRepo entitlement.Repository,
	notifier LapseNotifier,
	logger logger.Interface,
) *ExpireEntitlementsUseCase {
	return &ExpireEntitlementsUseCase{
		entitlementRepo: entitlementRepo,
		notifier:        notifier,
		logger:          logger,
	}
}

// Execute returns the number of lapsed entitlements found in this sweep.
func (uc *ExpireEntitlementsUseCase) Execute(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	now := time.Now().UTC()
	lapsed, err := uc.entitlementRepo.FindExpiring(ctx, now, batchSize)
	if err != nil {
		uc.logger.Errorw("entitlement expiry sweep failed", "error", err)
		return 0, err
	}

	for _, ent := range lapsed {
		if err := uc.notifier.NotifyEntitlementLapsed(ctx, ent); err != nil {
			uc.logger.Warnw("entitlement lapse notification failed",
				"error", err,
				"user_id", ent.UserID(),
				"name", ent.Name(),
			)
		}
	}

	if len(lapsed) > 0 {
		uc.logger.Infow("entitlement expiry sweep completed", "lapsed", len(lapsed))
	}
	return len(lapsed), nil
}
