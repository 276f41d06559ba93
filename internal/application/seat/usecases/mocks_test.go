package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/seatwise-io/seatwise/internal/domain/entitlement"
	"github.com/seatwise-io/seatwise/internal/domain/org"
	"github.com/seatwise-io/seatwise/internal/domain/subscription"
	"github.com/seatwise-io/seatwise/internal/domain/tier"
	vo "github.com/seatwise-io/seatwise/internal/domain/subscription/valueobjects"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

// fakeSubscriptionRepo mirrors the storage-level atomicity contract: the
// capacity check and increment happen under one lock, the same way the SQL
// implementation does them in one conditional UPDATE.
type fakeSubscriptionRepo struct {
	mu         sync.Mutex
	sub        *subscription.Subscription
	seatsUsed  int
	increments int
	decrements int
}

func newFakeSubscriptionRepo(sub *subscription.Subscription) *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{sub: sub, seatsUsed: sub.SeatsUsed()}
}

func (r *fakeSubscriptionRepo) Create(ctx context.Context, sub *subscription.Subscription) error {
	return nil
}

func (r *fakeSubscriptionRepo) Update(ctx context.Context, sub *subscription.Subscription) error {
	return nil
}

func (r *fakeSubscriptionRepo) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	if r.sub == nil || r.sub.ID() != id {
		return nil, subscription.ErrNotFound
	}
	return r.sub, nil
}

func (r *fakeSubscriptionRepo) GetBySID(ctx context.Context, sid string) (*subscription.Subscription, error) {
	if r.sub == nil || r.sub.SID() != sid {
		return nil, subscription.ErrNotFound
	}
	return r.sub, nil
}

func (r *fakeSubscriptionRepo) GetActiveByOrgID(ctx context.Context, orgID uint) (*subscription.Subscription, error) {
	if r.sub == nil || r.sub.OrgID() != orgID {
		return nil, subscription.ErrNotFound
	}
	return r.sub, nil
}

func (r *fakeSubscriptionRepo) GetActiveByOwnerUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	return nil, subscription.ErrNotFound
}

func (r *fakeSubscriptionRepo) List(ctx context.Context, offset, limit int) ([]*subscription.Subscription, int64, error) {
	return []*subscription.Subscription{r.sub}, 1, nil
}

func (r *fakeSubscriptionRepo) FindExpired(ctx context.Context, limit int) ([]*subscription.Subscription, error) {
	return nil, nil
}

func (r *fakeSubscriptionRepo) IncrementSeatsUsedIfAvailable(ctx context.Context, subscriptionID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := r.sub.SeatsTotal()
	if total != nil && r.seatsUsed >= *total {
		return subscription.ErrSeatCapacityExceeded
	}
	r.seatsUsed++
	r.increments++
	return nil
}

func (r *fakeSubscriptionRepo) DecrementSeatsUsed(ctx context.Context, subscriptionID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decrements++
	if r.seatsUsed > 0 {
		r.seatsUsed--
	}
	return nil
}

func (r *fakeSubscriptionRepo) SeatsUsed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seatsUsed
}

func (r *fakeSubscriptionRepo) Increments() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.increments
}

func (r *fakeSubscriptionRepo) Decrements() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decrements
}

type assignmentKey struct {
	subID  uint
	userID uint
}

// fakeAssignmentRepo keeps its own rows and hands out copies, the way a SQL
// store would: writers mutate their loaded entity and the conditional methods
// arbitrate against the stored row's active flag under the lock.
type fakeAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[assignmentKey]*subscription.SeatAssignment
	nextID      uint
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: map[assignmentKey]*subscription.SeatAssignment{}, nextID: 1}
}

func cloneAssignment(a *subscription.SeatAssignment) *subscription.SeatAssignment {
	c, _ := subscription.ReconstructSeatAssignment(subscription.SeatAssignmentReconstructParams{
		ID: a.ID(), SID: a.SID(), SubscriptionID: a.SubscriptionID(), UserID: a.UserID(),
		AssignedBy: a.AssignedBy(), Active: a.IsActive(), AssignedAt: a.AssignedAt(),
		RevokedAt: a.RevokedAt(), Version: a.Version(),
		CreatedAt: a.CreatedAt(), UpdatedAt: a.UpdatedAt(),
	})
	return c
}

func (r *fakeAssignmentRepo) Create(ctx context.Context, a *subscription.SeatAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := assignmentKey{a.SubscriptionID(), a.UserID()}
	if _, exists := r.assignments[k]; exists {
		return fmt.Errorf("UNIQUE constraint failed: seat_assignments.subscription_id, seat_assignments.user_id")
	}
	_ = a.SetID(r.nextID)
	r.nextID++
	r.assignments[k] = cloneAssignment(a)
	return nil
}

func (r *fakeAssignmentRepo) Update(ctx context.Context, a *subscription.SeatAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[assignmentKey{a.SubscriptionID(), a.UserID()}] = cloneAssignment(a)
	return nil
}

func (r *fakeAssignmentRepo) ReactivateIfInactive(ctx context.Context, a *subscription.SeatAssignment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := assignmentKey{a.SubscriptionID(), a.UserID()}
	stored, ok := r.assignments[k]
	if !ok || stored.IsActive() {
		return false, nil
	}
	r.assignments[k] = cloneAssignment(a)
	return true, nil
}

func (r *fakeAssignmentRepo) DeactivateIfActive(ctx context.Context, a *subscription.SeatAssignment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := assignmentKey{a.SubscriptionID(), a.UserID()}
	stored, ok := r.assignments[k]
	if !ok || !stored.IsActive() {
		return false, nil
	}
	r.assignments[k] = cloneAssignment(a)
	return true, nil
}

func (r *fakeAssignmentRepo) GetBySubscriptionAndUser(ctx context.Context, subID, userID uint) (*subscription.SeatAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[assignmentKey{subID, userID}]
	if !ok {
		return nil, subscription.ErrAssignmentNotFound
	}
	return cloneAssignment(a), nil
}

func (r *fakeAssignmentRepo) ListActiveBySubscription(ctx context.Context, subID uint, offset, limit int) ([]*subscription.SeatAssignment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var active []*subscription.SeatAssignment
	for k, a := range r.assignments {
		if k.subID == subID && a.IsActive() {
			active = append(active, a)
		}
	}
	return active, int64(len(active)), nil
}

func (r *fakeAssignmentRepo) CountActiveBySubscription(ctx context.Context, subID uint) (int64, error) {
	_, n, err := r.ListActiveBySubscription(ctx, subID, 0, 0)
	return n, err
}

// fakeEntitlementRepo appends rows the way the SQL store does: revoked rows
// stay behind and GetByUserAndName only ever sees the live one.
type fakeEntitlementRepo struct {
	mu     sync.Mutex
	rows   []*entitlement.Entitlement
	nextID uint
}

func newFakeEntitlementRepo() *fakeEntitlementRepo {
	return &fakeEntitlementRepo{nextID: 1}
}

func (r *fakeEntitlementRepo) Create(ctx context.Context, e *entitlement.Entitlement) error {
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

func (r *fakeEntitlementRepo) Update(ctx context.Context, e *entitlement.Entitlement) error {
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

func (r *fakeEntitlementRepo) GetByID(ctx context.Context, id uint) (*entitlement.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if e.ID() == id {
			return e, nil
		}
	}
	return nil, entitlement.ErrNotFound
}

func (r *fakeEntitlementRepo) GetBySourceEventID(ctx context.Context, sourceEventID string) (*entitlement.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if e.SourceEventID() == sourceEventID {
			return e, nil
		}
	}
	return nil, entitlement.ErrNotFound
}

func (r *fakeEntitlementRepo) GetByUserAndName(ctx context.Context, userID uint, name string) (*entitlement.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if e.UserID() == userID && e.Name() == name && e.RevokedAt() == nil {
			return e, nil
		}
	}
	return nil, entitlement.ErrNotFound
}

func (r *fakeEntitlementRepo) ListByUser(ctx context.Context, userID uint) ([]*entitlement.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entitlement.Entitlement
	for _, e := range r.rows {
		if e.UserID() == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntitlementRepo) FindExpiring(ctx context.Context, cutoff time.Time, limit int) ([]*entitlement.Entitlement, error) {
	return nil, nil
}

type fakeMembershipRepo struct {
	memberships map[uint]*org.Membership
}

func newFakeMembershipRepo(roles map[uint]tier.Role, orgID uint) *fakeMembershipRepo {
	r := &fakeMembershipRepo{memberships: map[uint]*org.Membership{}}
	var id uint = 1
	for userID, role := range roles {
		m, _ := org.ReconstructMembership(org.MembershipReconstructParams{
			ID: id, OrgID: orgID, UserID: userID, Role: role, Active: true,
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		})
		r.memberships[userID] = m
		id++
	}
	return r
}

func (r *fakeMembershipRepo) GetByOrgAndUser(ctx context.Context, orgID, userID uint) (*org.Membership, error) {
	m, ok := r.memberships[userID]
	if !ok || m.OrgID() != orgID {
		return nil, org.ErrMembershipNotFound
	}
	return m, nil
}

func (r *fakeMembershipRepo) ListByOrg(ctx context.Context, orgID uint) ([]*org.Membership, error) {
	var out []*org.Membership
	for _, m := range r.memberships {
		out = append(out, m)
	}
	return out, nil
}

// fakeTxRunner just runs the function; the fakes are individually atomic.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifier struct {
	mu       sync.Mutex
	assigned []uint
	revoked  []uint
}

func (n *fakeNotifier) NotifySeatAssigned(ctx context.Context, sub *subscription.Subscription, userID uint) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.assigned = append(n.assigned, userID)
	return nil
}

func (n *fakeNotifier) NotifySeatRevoked(ctx context.Context, sub *subscription.Subscription, userID uint) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.revoked = append(n.revoked, userID)
	return nil
}

func activeTestSubscription(seatsTotal *int) *subscription.Subscription {
	end := time.Now().UTC().AddDate(0, 1, 0)
	sub, _ := subscription.ReconstructSubscription(subscription.SubscriptionReconstructParams{
		ID: 1, SID: "sub_seatwise0001", OwnerType: vo.OwnerTypeOrganization,
		OrgID: 100, OrgCategory: tier.OrgCategoryPreschool, PlanTier: tier.TierStarter,
		Status: vo.StatusActive, SeatsTotal: seatsTotal, SeatsUsed: 0,
		BillingCycle: vo.BillingCycleMonthly, PriceCents: 49900, Currency: "ZAR",
		PeriodEnd: end, Version: 1,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	})
	return sub
}

func k12StarterSubscription(seatsTotal *int) *subscription.Subscription {
	end := time.Now().UTC().AddDate(0, 1, 0)
	sub, _ := subscription.ReconstructSubscription(subscription.SubscriptionReconstructParams{
		ID: 2, SID: "sub_seatwise0002", OwnerType: vo.OwnerTypeOrganization,
		OrgID: 100, OrgCategory: tier.OrgCategoryK12, PlanTier: tier.TierStarter,
		Status: vo.StatusActive, SeatsTotal: seatsTotal, SeatsUsed: 0,
		BillingCycle: vo.BillingCycleMonthly, PriceCents: 49900, Currency: "ZAR",
		PeriodEnd: end, Version: 1,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	})
	return sub
}

func overLimitSubscription(seatsTotal *int, seatsUsed int) *subscription.Subscription {
	end := time.Now().UTC().AddDate(0, 1, 0)
	sub, _ := subscription.ReconstructSubscription(subscription.SubscriptionReconstructParams{
		ID: 3, SID: "sub_seatwise0003", OwnerType: vo.OwnerTypeOrganization,
		OrgID: 100, OrgCategory: tier.OrgCategoryPreschool, PlanTier: tier.TierStarter,
		Status: vo.StatusActive, SeatsTotal: seatsTotal, SeatsUsed: seatsUsed,
		BillingCycle: vo.BillingCycleMonthly, PriceCents: 49900, Currency: "ZAR",
		PeriodEnd: end, Version: 1,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	})
	return sub
}

func testLogger() logger.Interface {
	return logger.NewLogger()
}
