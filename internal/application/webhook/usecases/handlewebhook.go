package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	entitlementUsecases "github.com/seatwise-io/seatwise/internal/application/entitlement/usecases"
	"github.com/seatwise-io/seatwise/internal/application/webhook/providers"
	"github.com/seatwise-io/seatwise/internal/domain/entitlement"
	"github.com/seatwise-io/seatwise/internal/domain/subscription"
	vo "github.com/seatwise-io/seatwise/internal/domain/subscription/valueobjects"
	"github.com/seatwise-io/seatwise/internal/domain/webhook"
	"github.com/seatwise-io/seatwise/internal/shared/biztime"
	apperrors "github.com/seatwise-io/seatwise/internal/shared/errors"
	"github.com/seatwise-io/seatwise/internal/shared/goroutine"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

// SubscriptionChangeNotifier delivers best-effort notifications about
// lifecycle changes applied by webhooks.
type SubscriptionChangeNotifier interface {
	NotifySubscriptionChange(ctx context.Context, sub *subscription.Subscription, eventType webhook.EventType) error
}

// TransactionRunner runs a function inside a database transaction.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type HandleWebhookResult struct {
	EventSID  string `json:"event_sid"`
	Duplicate bool   `json:"duplicate"`
}

// HandleWebhookUseCase is the webhook pipeline: verify the signature against
// the raw body, record the event exactly once, re-check the echoed
// correlation fields against stored state, then apply the lifecycle
// transition. Known-bad events (unknown subscription, correlation mismatch)
// are acknowledged so the provider stops retrying them; transient storage
// failures are returned so the provider retries.
type HandleWebhookUseCase struct {
	registry         *providers.Registry
	eventRepo        webhook.Repository
	subscriptionRepo subscription.Repository
	grantUC          *entitlementUsecases.GrantEntitlementUseCase
	revokeUC         *entitlementUsecases.RevokeEntitlementUseCase
	txRunner         TransactionRunner
	notifier         SubscriptionChangeNotifier
	logger           logger.Interface
}

func NewHandleWebhookUseCase(
	registry *providers.Registry,
	eventRepo webhook.Repository,
	subscriptionRepo subscription.Repository,
	grantUC *entitlementUsecases.GrantEntitlementUseCase,
	revokeUC *entitlementUsecases.RevokeEntitlementUseCase,
	txRunner TransactionRunner,
	notifier SubscriptionChangeNotifier,
	logger logger.Interface,
) *HandleWebhookUseCase {
	return &HandleWebhookUseCase{
		registry:         registry,
		eventRepo:        eventRepo,
		subscriptionRepo: subscriptionRepo,
		grantUC:          grantUC,
		revokeUC:         revokeUC,
		txRunner:         txRunner,
		notifier:         notifier,
		logger:           logger,
	}
}

func (uc *HandleWebhookUseCase) Execute(ctx context.Context, providerName string, r *http.Request, body []byte) (*HandleWebhookResult, error) {
	provider, err := uc.registry.Get(providerName)
	if err != nil {
		return nil, apperrors.NewNotFoundError("unknown provider", providerName)
	}

	n, err := provider.VerifyAndParse(r, body)
	if err != nil {
		// The raw payload is archived even when verification fails, so the
		// audit trail covers rejected deliveries too.
		uc.archiveRejected(ctx, providerName, body, err)
		if stderrors.Is(err, webhook.ErrSignatureInvalid) {
			uc.logger.Warnw("webhook signature verification failed",
				"provider", providerName,
				"remote_addr", r.RemoteAddr,
				"security_event", true,
			)
			return nil, apperrors.NewUnauthorizedError("signature verification failed")
		}
		uc.logger.Warnw("webhook payload rejected", "provider", providerName, "error", err)
		return nil, apperrors.NewBadRequestError("unprocessable webhook payload", err.Error())
	}

	sub, subErr := uc.subscriptionRepo.GetBySID(ctx, n.SubscriptionSID)
	if subErr != nil && !stderrors.Is(subErr, subscription.ErrNotFound) {
		// Transient storage failure before anything was recorded: let the
		// provider retry the delivery.
		return nil, apperrors.NewInternalError("failed to load subscription", subErr.Error())
	}

	var subID uint
	if sub != nil {
		subID = sub.ID()
	}

	event, err := webhook.NewEvent(providerName, n.EventID, n.EventType, subID, body)
	if err != nil {
		return nil, apperrors.NewBadRequestError("invalid webhook event", err.Error())
	}

	// The unique (provider, provider_event_id) insert is the exactly-once
	// gate: a redelivery lands here as isNew=false.
	stored, isNew, err := uc.eventRepo.RecordIfNew(ctx, event)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to record webhook event", err.Error())
	}
	if !isNew {
		uc.logger.Infow("duplicate webhook delivery acknowledged",
			"provider", providerName,
			"provider_event_id", n.EventID,
			"processed", stored.IsProcessed(),
		)
		if stored.IsProcessed() {
			return &HandleWebhookResult{EventSID: stored.SID(), Duplicate: true}, nil
		}
		// Recorded earlier but effects never applied; this redelivery
		// carries the same payload, so process the stored event now.
		event = stored
	}

	if err := uc.process(ctx, event, sub, n); err != nil {
		return nil, err
	}
	return &HandleWebhookResult{EventSID: event.SID(), Duplicate: !isNew}, nil
}

// process applies the event's effects and marks the outcome on the event row.
func (uc *HandleWebhookUseCase) process(ctx context.Context, event *webhook.Event, sub *subscription.Subscription, n *providers.Notification) error {
	if sub == nil {
		// The referenced subscription does not exist. A retry cannot fix
		// that, so record the failure and acknowledge.
		uc.markFailed(ctx, event, "subscription not found: "+n.SubscriptionSID)
		return nil
	}

	// Echoed correlation fields are untrusted even after signature
	// verification; re-validate them against stored state.
	if n.EventType == webhook.EventPaymentSucceeded {
		if err := sub.MatchesAmount(n.AmountCents, n.Currency); err != nil {
			uc.logger.Errorw("webhook correlation mismatch",
				"provider", event.Provider(),
				"provider_event_id", event.ProviderEventID(),
				"subscription_sid", sub.SID(),
				"error", err,
			)
			uc.markFailed(ctx, event, fmt.Sprintf("%v: %v", webhook.ErrCorrelationMismatch, err))
			return nil
		}
	}

	txErr := uc.txRunner.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.applyTransition(txCtx, sub, n); err != nil {
			return err
		}
		event.MarkProcessed()
		return uc.eventRepo.Update(txCtx, event)
	})
	if txErr != nil {
		uc.markFailed(ctx, event, txErr.Error())
		uc.logger.Errorw("webhook processing failed",
			"provider", event.Provider(),
			"provider_event_id", event.ProviderEventID(),
			"error", txErr,
		)
		return apperrors.NewInternalError("failed to process webhook", txErr.Error())
	}

	uc.logger.Infow("webhook processed",
		"provider", event.Provider(),
		"provider_event_id", event.ProviderEventID(),
		"event_type", n.EventType,
		"subscription_sid", sub.SID(),
	)

	goroutine.SafeGo(uc.logger, "notify-subscription-change", func() {
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := uc.notifier.NotifySubscriptionChange(notifyCtx, sub, n.EventType); err != nil {
			uc.logger.Warnw("subscription change notification failed", "error", err)
		}
	})

	return nil
}

func (uc *HandleWebhookUseCase) applyTransition(ctx context.Context, sub *subscription.Subscription, n *providers.Notification) error {
	switch n.EventType {
	case webhook.EventPaymentSucceeded:
		periodEnd := n.PeriodEnd
		if periodEnd.IsZero() {
			periodEnd = sub.BillingCycle().NextPeriodEnd(biztime.NowUTC())
		}
		if err := sub.Activate(periodEnd); err != nil {
			return err
		}
		if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			return err
		}
		return uc.grantOwnerEntitlement(ctx, sub, n)

	case webhook.EventPaymentFailed:
		if err := sub.MarkPendingPayment(); err != nil {
			return err
		}
		return uc.subscriptionRepo.Update(ctx, sub)

	case webhook.EventSubscriptionCancelled:
		if err := sub.Cancel("cancelled by provider", n.OccurredAt); err != nil {
			return err
		}
		return uc.subscriptionRepo.Update(ctx, sub)

	case webhook.EventRefunded:
		if err := sub.Cancel("refunded", n.OccurredAt); err != nil {
			return err
		}
		if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			return err
		}
		return uc.revokeOwnerEntitlement(ctx, sub, n)

	default:
		return fmt.Errorf("unhandled event type: %s", n.EventType)
	}
}

// grantOwnerEntitlement keeps the owner's tier entitlement in step with paid
// periods for individually owned subscriptions. Organization members get
// theirs through seat assignment instead.
func (uc *HandleWebhookUseCase) grantOwnerEntitlement(ctx context.Context, sub *subscription.Subscription, n *providers.Notification) error {
	if sub.OwnerType() != vo.OwnerTypeIndividual {
		return nil
	}
	periodEnd := sub.PeriodEnd()
	_, err := uc.grantUC.Execute(ctx, entitlementUsecases.GrantEntitlementCommand{
		UserID:        sub.OwnerUserID(),
		Name:          sub.Tier().String(),
		Source:        entitlement.SourceSubscription,
		SourceEventID: n.EventID,
		ExpiresAt:     &periodEnd,
	})
	return err
}

func (uc *HandleWebhookUseCase) revokeOwnerEntitlement(ctx context.Context, sub *subscription.Subscription, n *providers.Notification) error {
	if sub.OwnerType() != vo.OwnerTypeIndividual {
		return nil
	}
	return uc.revokeUC.Execute(ctx, entitlementUsecases.RevokeEntitlementCommand{
		UserID: sub.OwnerUserID(),
		Name:   sub.Tier().String(),
		Reason: "refunded",
		At:     n.OccurredAt,
	})
}

// archiveRejected stores a rejected delivery as an unverified audit row. The
// archive is best effort: a storage failure here must not change the
// rejection response the provider gets.
func (uc *HandleWebhookUseCase) archiveRejected(ctx context.Context, providerName string, body []byte, cause error) {
	event, err := webhook.NewUnverifiedEvent(providerName, body)
	if err != nil {
		uc.logger.Warnw("failed to build rejected webhook archive", "provider", providerName, "error", err)
		return
	}
	event.MarkFailed(cause.Error())

	if _, _, err := uc.eventRepo.RecordIfNew(ctx, event); err != nil {
		uc.logger.Warnw("failed to archive rejected webhook",
			"provider", providerName,
			"error", err,
		)
	}
}

func (uc *HandleWebhookUseCase) markFailed(ctx context.Context, event *webhook.Event, reason string) {
	event.MarkFailed(reason)
	if err := uc.eventRepo.Update(ctx, event); err != nil {
		uc.logger.Warnw("failed to record webhook failure",
			"provider", event.Provider(),
			"provider_event_id", event.ProviderEventID(),
			"error", err,
		)
	}
}
