package subscription

import (
	"fmt"
	"time"

	"github.com/seatwise-io/seatwise/internal/domain/tier"
	vo "github.com/seatwise-io/seatwise/internal/domain/subscription/valueobjects"
	"github.com/seatwise-io/seatwise/internal/shared/id"
)

// UnlimitedSeats is the sentinel returned by SeatsAvailable when the
// subscription has no seat cap.
const UnlimitedSeats = -1

// Subscription is the aggregate root owning the seat capacity invariant:
// when seatsTotal is set, seats_used <= seats_total must hold after every
// committed operation. The check-and-increment itself happens atomically in
// the repository; this aggregate carries the billing state machine and the
// read-side invariant helpers.
type Subscription struct {
	id           uint
	sid          string
	ownerType    vo.OwnerType
	orgID        uint
	ownerUserID  uint
	orgCategory  tier.OrgCategory
	planTier     tier.Tier
	status       vo.SubscriptionStatus
	seatsTotal   *int
	seatsUsed    int
	billingCycle vo.BillingCycle
	priceCents   int64
	currency     string
	periodEnd    time.Time
	cancelledAt  *time.Time
	cancelReason *string
	version      int
	createdAt    time.Time
	updatedAt    time.Time
}

// NewOrganizationSubscription creates a subscription owned by an organization.
// rawTier may be a legacy tier name; it is normalized here and nowhere else.
func NewOrganizationSubscription(
	orgID uint,
	orgCategory tier.OrgCategory,
	rawTier string,
	seatsTotal *int,
	billingCycle vo.BillingCycle,
	priceCents int64,
	currency string,
	periodEnd time.Time,
) (*Subscription, error) {
	if orgID == 0 {
		return nil, fmt.Errorf("organization ID is required")
	}
	if !orgCategory.IsValid() {
		return nil, fmt.Errorf("invalid organization category: %s", orgCategory)
	}
	if seatsTotal != nil && *seatsTotal < 0 {
		return nil, fmt.Errorf("seats total cannot be negative")
	}
	if priceCents < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}

	now := time.Now().UTC()
	return &Subscription{
		sid:          id.NewSubscriptionSID(),
		ownerType:    vo.OwnerTypeOrganization,
		orgID:        orgID,
		orgCategory:  orgCategory,
		planTier:     tier.Normalize(rawTier),
		status:       vo.StatusPendingPayment,
		seatsTotal:   seatsTotal,
		billingCycle: billingCycle,
		priceCents:   priceCents,
		currency:     currency,
		periodEnd:    periodEnd,
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// NewIndividualSubscription creates a subscription owned by a single user.
// Individual subscriptions never carry seats.
func NewIndividualSubscription(
	ownerUserID uint,
	rawTier string,
	billingCycle vo.BillingCycle,
	priceCents int64,
	currency string,
	periodEnd time.Time,
) (*Subscription, error) {
	if ownerUserID == 0 {
		return nil, fmt.Errorf("owner user ID is required")
	}
	if priceCents < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}

	zero := 0
	now := time.Now().UTC()
	return &Subscription{
		sid:          id.NewSubscriptionSID(),
		ownerType:    vo.OwnerTypeIndividual,
		ownerUserID:  ownerUserID,
		orgCategory:  tier.OrgCategoryIndividual,
		planTier:     tier.Normalize(rawTier),
		status:       vo.StatusPendingPayment,
		seatsTotal:   &zero,
		billingCycle: billingCycle,
		priceCents:   priceCents,
		currency:     currency,
		periodEnd:    periodEnd,
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// SubscriptionReconstructParams carries persisted state back into the aggregate.
type SubscriptionReconstructParams struct {
	ID           uint
	SID          string
	OwnerType    vo.OwnerType
	OrgID        uint
	OwnerUserID  uint
	OrgCategory  tier.OrgCategory
	PlanTier     tier.Tier
	Status       vo.SubscriptionStatus
	SeatsTotal   *int
	SeatsUsed    int
	BillingCycle vo.BillingCycle
	PriceCents   int64
	Currency     string
	PeriodEnd    time.Time
	CancelledAt  *time.Time
	CancelReason *string
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ReconstructSubscription reconstructs a subscription from persistence.
// A legacy seats_used > seats_total state is tolerated here (it is read and
// displayed); new violations are prevented by the atomic assign path.
func ReconstructSubscription(p SubscriptionReconstructParams) (*Subscription, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if p.SID == "" {
		return nil, fmt.Errorf("subscription SID is required")
	}
	if !p.OwnerType.IsValid() {
		return nil, fmt.Errorf("invalid owner type: %s", p.OwnerType)
	}
	if !vo.ValidStatuses[p.Status] {
		return nil, fmt.Errorf("invalid subscription status: %s", p.Status)
	}
	if p.SeatsUsed < 0 {
		return nil, fmt.Errorf("seats used cannot be negative")
	}

	return &Subscription{
		id:           p.ID,
		sid:          p.SID,
		ownerType:    p.OwnerType,
		orgID:        p.OrgID,
		ownerUserID:  p.OwnerUserID,
		orgCategory:  p.OrgCategory,
		planTier:     p.PlanTier,
		status:       p.Status,
		seatsTotal:   p.SeatsTotal,
		seatsUsed:    p.SeatsUsed,
		billingCycle: p.BillingCycle,
		priceCents:   p.PriceCents,
		currency:     p.Currency,
		periodEnd:    p.PeriodEnd,
		cancelledAt:  p.CancelledAt,
		cancelReason: p.CancelReason,
		version:      p.Version,
		createdAt:    p.CreatedAt,
		updatedAt:    p.UpdatedAt,
	}, nil
}

func (s *Subscription) ID() uint                       { return s.id }
func (s *Subscription) SID() string                    { return s.sid }
func (s *Subscription) OwnerType() vo.OwnerType        { return s.ownerType }
func (s *Subscription) OrgID() uint                    { return s.orgID }
func (s *Subscription) OwnerUserID() uint              { return s.ownerUserID }
func (s *Subscription) OrgCategory() tier.OrgCategory  { return s.orgCategory }
func (s *Subscription) Tier() tier.Tier                { return s.planTier }
func (s *Subscription) Status() vo.SubscriptionStatus  { return s.status }
func (s *Subscription) SeatsTotal() *int               { return s.seatsTotal }
func (s *Subscription) SeatsUsed() int                 { return s.seatsUsed }
func (s *Subscription) BillingCycle() vo.BillingCycle  { return s.billingCycle }
func (s *Subscription) PriceCents() int64              { return s.priceCents }
func (s *Subscription) Currency() string               { return s.currency }
func (s *Subscription) PeriodEnd() time.Time           { return s.periodEnd }
func (s *Subscription) CancelledAt() *time.Time        { return s.cancelledAt }
func (s *Subscription) CancelReason() *string          { return s.cancelReason }
func (s *Subscription) Version() int                   { return s.version }
func (s *Subscription) CreatedAt() time.Time           { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time           { return s.updatedAt }

// SetID sets the subscription ID (only for persistence layer use)
func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

// SeatsAvailable returns max(0, total-used), or UnlimitedSeats when no cap
// is set.
func (s *Subscription) SeatsAvailable() int {
	if s.seatsTotal == nil {
		return UnlimitedSeats
	}
	available := *s.seatsTotal - s.seatsUsed
	if available < 0 {
		return 0
	}
	return available
}

// IsOverLimit reports a legacy seats_used > seats_total state. Such
// subscriptions stay readable but are frozen from further assignment.
func (s *Subscription) IsOverLimit() bool {
	return s.seatsTotal != nil && s.seatsUsed > *s.seatsTotal
}

// CanAssignSeats reports whether the subscription is in a state that allows
// consuming seats at all. Capacity itself is checked atomically in storage.
func (s *Subscription) CanAssignSeats() bool {
	return s.status.CanUseService()
}

// Activate transitions the subscription to active after a verified payment.
// periodEnd comes from the provider event, never from the local clock, so
// out-of-order deliveries cannot corrupt the period.
func (s *Subscription) Activate(periodEnd time.Time) error {
	if s.status == vo.StatusActive {
		// Idempotent: a redelivered activation only extends the period.
		return s.Renew(periodEnd)
	}

	if !s.status.CanTransitionTo(vo.StatusActive) {
		return ErrInvalidTransition(s.status.String(), vo.StatusActive.String())
	}

	s.status = vo.StatusActive
	if periodEnd.After(s.periodEnd) {
		s.periodEnd = periodEnd
	}
	s.touch()
	return nil
}

// Renew extends the current period. A renewal arriving out of order (its
// period end not after the stored one) is a no-op rather than an error so
// redeliveries and reordering are harmless.
func (s *Subscription) Renew(periodEnd time.Time) error {
	if !s.status.CanRenew() {
		return ErrInvalidTransition(s.status.String(), vo.StatusActive.String())
	}

	if !periodEnd.After(s.periodEnd) {
		return nil
	}

	s.periodEnd = periodEnd
	if s.status != vo.StatusActive {
		s.status = vo.StatusActive
	}
	s.touch()
	return nil
}

// Cancel marks the subscription cancelled at the provider-supplied time.
// Cancelling an already cancelled subscription is a no-op.
func (s *Subscription) Cancel(reason string, at time.Time) error {
	if s.status == vo.StatusCancelled {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusCancelled) {
		return ErrInvalidTransition(s.status.String(), vo.StatusCancelled.String())
	}
	if reason == "" {
		return fmt.Errorf("cancel reason is required")
	}

	at = at.UTC()
	s.status = vo.StatusCancelled
	s.cancelledAt = &at
	s.cancelReason = &reason
	s.touch()
	return nil
}

// MarkPendingPayment records a failed renewal payment.
func (s *Subscription) MarkPendingPayment() error {
	if s.status == vo.StatusPendingPayment {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusPendingPayment) {
		return ErrInvalidTransition(s.status.String(), vo.StatusPendingPayment.String())
	}
	s.status = vo.StatusPendingPayment
	s.touch()
	return nil
}

// MarkExpired marks the subscription expired. Expiry is derived from
// periodEnd, never event-driven.
func (s *Subscription) MarkExpired() error {
	if s.status == vo.StatusExpired {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusExpired) {
		return ErrInvalidTransition(s.status.String(), vo.StatusExpired.String())
	}
	s.status = vo.StatusExpired
	s.touch()
	return nil
}

// IsExpired checks whether the current period has lapsed.
func (s *Subscription) IsExpired(now time.Time) bool {
	return now.After(s.periodEnd)
}

// MatchesAmount verifies a provider-reported amount and currency against the
// subscription. Correlation fields echoed back by providers are untrusted:
// the signature proves integrity, not that the referenced record is the one
// being paid for.
func (s *Subscription) MatchesAmount(amountCents int64, currency string) error {
	if amountCents != s.priceCents {
		return fmt.Errorf("amount mismatch: expected %d, got %d", s.priceCents, amountCents)
	}
	if currency != "" && currency != s.currency {
		return fmt.Errorf("currency mismatch: expected %s, got %s", s.currency, currency)
	}
	return nil
}

func (s *Subscription) touch() {
	s.updatedAt = time.Now().UTC()
	s.version++
}
