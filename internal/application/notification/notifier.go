// Package notification delivers best-effort change notifications. The log
// notifier is the default sink; callers treat every notifier as fallible and
// never let a delivery failure affect the originating operation.
package notification

import (
	"context"

	"github.com/seatwise-io/seatwise/internal/domain/entitlement"
	"github.com/seatwise-io/seatwise/internal/domain/subscription"
	"github.com/seatwise-io/seatwise/internal/domain/webhook"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

// LogNotifier writes notifications to the structured log. It satisfies the
// seat, webhook, and entitlement notifier interfaces.
type LogNotifier struct {
	logger logger.Interface
}

func NewLogNotifier(logger logger.Interface) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notifier")}
}

func (n *LogNotifier) NotifySeatAssigned(ctx context.Context, sub *subscription.Subscription, userID uint) error {
	n.logger.Infow("seat assigned",
		"subscription_sid", sub.SID(),
		"user_id", userID,
		"seats_used", sub.SeatsUsed(),
	)
	return nil
}

func (n *LogNotifier) NotifySeatRevoked(ctx context.Context, sub *subscription.Subscription, userID uint) error {
	n.logger.Infow("seat revoked",
		"subscription_sid", sub.SID(),
		"user_id", userID,
	)
	return nil
}

func (n *LogNotifier) NotifySubscriptionChange(ctx context.Context, sub *subscription.Subscription, eventType webhook.EventType) error {
	n.logger.Infow("subscription changed",
		"subscription_sid", sub.SID(),
		"event_type", eventType,
		"status", sub.Status(),
	)
	return nil
}

func (n *LogNotifier) NotifyEntitlementLapsed(ctx context.Context, ent *entitlement.Entitlement) error {
	n.logger.Infow("entitlement lapsed",
		"entitlement_sid", ent.SID(),
		"user_id", ent.UserID(),
		"name", ent.Name(),
	)
	return nil
}
