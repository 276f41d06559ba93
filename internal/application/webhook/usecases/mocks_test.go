package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/seatwise-io/seatwise/internal/domain/entitlement"
	"github.com/seatwise-io/seatwise/internal/domain/subscription"
	vo "github.com/seatwise-io/seatwise/internal/domain/subscription/valueobjects"
	"github.com/seatwise-io/seatwise/internal/domain/tier"
	"github.com/seatwise-io/seatwise/internal/domain/webhook"
)

type eventKey struct {
	provider string
	eventID  string
}

// memEventRepo enforces the unique (provider, provider_event_id) pair under
// a lock, the same contract the composite index provides in SQL.
type memEventRepo struct {
	mu     sync.Mutex
	events map[eventKey]*webhook.Event
	nextID uint
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: map[eventKey]*webhook.Event{}, nextID: 1}
}

func (r *memEventRepo) RecordIfNew(ctx context.Context, event *webhook.Event) (*webhook.Event, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := eventKey{event.Provider(), event.ProviderEventID()}
	if stored, ok := r.events[k]; ok {
		return stored, false, nil
	}
	_ = event.SetID(r.nextID)
	r.nextID++
	r.events[k] = event
	return event, true, nil
}

func (r *memEventRepo) Update(ctx context.Context, event *webhook.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[eventKey{event.Provider(), event.ProviderEventID()}] = event
	return nil
}

func (r *memEventRepo) GetByProviderEventID(ctx context.Context, provider, providerEventID string) (*webhook.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventKey{provider, providerEventID}]
	if !ok {
		return nil, webhook.ErrNotFound
	}
	return e, nil
}

func (r *memEventRepo) FindUnprocessed(ctx context.Context, cutoff time.Time, maxAttempts, limit int) ([]*webhook.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*webhook.Event
	for _, e := range r.events {
		if !e.IsProcessed() && e.SignatureValid() && e.Attempts() < maxAttempts && e.ReceivedAt().Before(cutoff) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEventRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *memEventRepo) all() []*webhook.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*webhook.Event, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e)
	}
	return out
}

type memSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]*subscription.Subscription
}

func newMemSubscriptionRepo(subs ...*subscription.Subscription) *memSubscriptionRepo {
	r := &memSubscriptionRepo{subs: map[string]*subscription.Subscription{}}
	for _, s := range subs {
		r.subs[s.SID()] = s
	}
	return r
}

func (r *memSubscriptionRepo) Create(ctx context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.SID()] = sub
	return nil
}

func (r *memSubscriptionRepo) Update(ctx context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.SID()] = sub
	return nil
}

func (r *memSubscriptionRepo) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.ID() == id {
			return s, nil
		}
	}
	return nil, subscription.ErrNotFound
}

func (r *memSubscriptionRepo) GetBySID(ctx context.Context, sid string) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[sid]
	if !ok {
		return nil, subscription.ErrNotFound
	}
	return s, nil
}

func (r *memSubscriptionRepo) GetActiveByOrgID(ctx context.Context, orgID uint) (*subscription.Subscription, error) {
	return nil, subscription.ErrNotFound
}

func (r *memSubscriptionRepo) GetActiveByOwnerUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	return nil, subscription.ErrNotFound
}

func (r *memSubscriptionRepo) List(ctx context.Context, offset, limit int) ([]*subscription.Subscription, int64, error) {
	return nil, 0, nil
}

func (r *memSubscriptionRepo) FindExpired(ctx context.Context, limit int) ([]*subscription.Subscription, error) {
	return nil, nil
}

func (r *memSubscriptionRepo) IncrementSeatsUsedIfAvailable(ctx context.Context, subscriptionID uint) error {
	return nil
}

func (r *memSubscriptionRepo) DecrementSeatsUsed(ctx context.Context, subscriptionID uint) error {
	return nil
}

// memEntitlementRepo keeps every row it has ever seen, like the SQL table:
// revoked grants stay behind as audit history and only live rows answer the
// (user, name) lookup.
type memEntitlementRepo struct {
	mu     sync.Mutex
	rows   []*entitlement.Entitlement
	nextID uint
}

func newMemEntitlementRepo() *memEntitlementRepo {
	return &memEntitlementRepo{nextID: 1}
}

func (r *memEntitlementRepo) Create(ctx context.Context, e *entitlement.Entitlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.UserID() == e.UserID() && row.Name() == e.Name() && row.RevokedAt() == nil {
			return fmt.Errorf("UNIQUE constraint failed: entitlements.user_id, entitlements.name, entitlements.revoke_key")
		}
	}
	_ = e.SetID(r.nextID)
	r.nextID++
	r.rows = append(r.rows, e)
	return nil
}

func (r *memEntitlementRepo) Update(ctx context.Context, e *entitlement.Entitlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.ID() == e.ID() {
			r.rows[i] = e
			return nil
		}
	}
	return entitlement.ErrNotFound
}

func (r *memEntitlementRepo) GetByID(ctx context.Context, id uint) (*entitlement.Entitlement, error) {
	return nil, entitlement.ErrNotFound
}

func (r *memEntitlementRepo) GetBySourceEventID(ctx context.Context, sourceEventID string) (*entitlement.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if e.SourceEventID() == sourceEventID {
			return e, nil
		}
	}
	return nil, entitlement.ErrNotFound
}

func (r *memEntitlementRepo) GetByUserAndName(ctx context.Context, userID uint, name string) (*entitlement.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if e.UserID() == userID && e.Name() == name && e.RevokedAt() == nil {
			return e, nil
		}
	}
	return nil, entitlement.ErrNotFound
}

func (r *memEntitlementRepo) ListByUser(ctx context.Context, userID uint) ([]*entitlement.Entitlement, error) {
	return nil, nil
}

func (r *memEntitlementRepo) FindExpiring(ctx context.Context, cutoff time.Time, limit int) ([]*entitlement.Entitlement, error) {
	return nil, nil
}

type passTxRunner struct{}

func (passTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopNotifier struct{}

func (noopNotifier) NotifySubscriptionChange(ctx context.Context, sub *subscription.Subscription, eventType webhook.EventType) error {
	return nil
}

func pendingSubscription(sid string, priceCents int64, currency string) *subscription.Subscription {
	end := time.Now().UTC()
	sub, _ := subscription.ReconstructSubscription(subscription.SubscriptionReconstructParams{
		ID: 1, SID: sid, OwnerType: vo.OwnerTypeOrganization,
		OrgID: 100, OrgCategory: tier.OrgCategoryPreschool, PlanTier: tier.TierStarter,
		Status: vo.StatusPendingPayment, SeatsTotal: nil, SeatsUsed: 0,
		BillingCycle: vo.BillingCycleMonthly, PriceCents: priceCents, Currency: currency,
		PeriodEnd: end, Version: 1,
		CreatedAt: end, UpdatedAt: end,
	})
	return sub
}

func individualSubscription(sid string, ownerUserID uint, priceCents int64, currency string) *subscription.Subscription {
	end := time.Now().UTC().AddDate(0, 1, 0)
	zero := 0
	sub, _ := subscription.ReconstructSubscription(subscription.SubscriptionReconstructParams{
		ID: 2, SID: sid, OwnerType: vo.OwnerTypeIndividual,
		OwnerUserID: ownerUserID, OrgCategory: tier.OrgCategoryIndividual, PlanTier: tier.TierPremium,
		Status: vo.StatusActive, SeatsTotal: &zero, SeatsUsed: 0,
		BillingCycle: vo.BillingCycleMonthly, PriceCents: priceCents, Currency: currency,
		PeriodEnd: end, Version: 1,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	})
	return sub
}
