package subscription

import "context"

// Repository persists subscriptions.
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	GetBySID(ctx context.Context, sid string) (*Subscription, error)
	GetActiveByOrgID(ctx context.Context, orgID uint) (*Subscription, error)
	GetActiveByOwnerUserID(ctx context.Context, userID uint) (*Subscription, error)
	List(ctx context.Context, offset, limit int) ([]*Subscription, int64, error)
	FindExpired(ctx context.Context, limit int) ([]*Subscription, error)

	// IncrementSeatsUsedIfAvailable performs the capacity check and the
	// increment in a single conditional UPDATE so no interleaving of
	// concurrent callers can push seats_used past seats_total. It returns
	// ErrSeatCapacityExceeded when no row qualified (full, over limit, or
	// not active) and the ledger is untouched.
	IncrementSeatsUsedIfAvailable(ctx context.Context, subscriptionID uint) error

	// DecrementSeatsUsed decrements seats_used, guarded so it never drops
	// below zero even if a stale revoke races a repair job.
	DecrementSeatsUsed(ctx context.Context, subscriptionID uint) error
}

// SeatAssignmentRepository persists seat assignments.
type SeatAssignmentRepository interface {
	Create(ctx context.Context, assignment *SeatAssignment) error
	Update(ctx context.Context, assignment *SeatAssignment) error

	// ReactivateIfInactive writes the assignment in one conditional UPDATE
	// predicated on the stored row being inactive. It reports false when the
	// row was already active, which is how a racing reassignment learns it
	// lost without touching the seat ledger.
	ReactivateIfInactive(ctx context.Context, assignment *SeatAssignment) (bool, error)

	// DeactivateIfActive is the revocation counterpart: the write lands only
	// if the stored row is still active, so concurrent revokes release the
	// seat exactly once.
	DeactivateIfActive(ctx context.Context, assignment *SeatAssignment) (bool, error)

	GetBySubscriptionAndUser(ctx context.Context, subscriptionID, userID uint) (*SeatAssignment, error)
	ListActiveBySubscription(ctx context.Context, subscriptionID uint, offset, limit int) ([]*SeatAssignment, int64, error)
	CountActiveBySubscription(ctx context.Context, subscriptionID uint) (int64, error)
}
