package valueobjects

type SubscriptionStatus string

const (
	StatusActive         SubscriptionStatus = "active"
	StatusPendingPayment SubscriptionStatus = "pending_payment"
	StatusCancelled      SubscriptionStatus = "cancelled"
	StatusExpired        SubscriptionStatus = "expired"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// CanUseService reports whether seats may be consumed in this status.
func (s SubscriptionStatus) CanUseService() bool {
	return s == StatusActive
}

// CanRenew reports whether a renewal event may reactivate this status.
// Cancelled is terminal for this record: a renewal after cancellation
// creates a new subscription rather than resurrecting the old one.
func (s SubscriptionStatus) CanRenew() bool {
	return s == StatusActive || s == StatusPendingPayment || s == StatusExpired
}

func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	transitions := map[SubscriptionStatus][]SubscriptionStatus{
		StatusPendingPayment: {StatusActive, StatusCancelled, StatusExpired},
		StatusActive:         {StatusPendingPayment, StatusCancelled, StatusExpired},
		StatusExpired:        {StatusActive},
		StatusCancelled:      {},
	}

	allowed, exists := transitions[s]
	if !exists {
		return false
	}

	for _, allowedStatus := range allowed {
		if allowedStatus == target {
			return true
		}
	}
	return false
}

var ValidStatuses = map[SubscriptionStatus]bool{
	StatusActive:         true,
	StatusPendingPayment: true,
	StatusCancelled:      true,
	StatusExpired:        true,
}
