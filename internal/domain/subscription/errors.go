package subscription

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the subscription does not exist.
	ErrNotFound = errors.New("subscription not found")

	// ErrSeatCapacityExceeded indicates the atomic seat increment found no
	// remaining capacity. The ledger is unchanged when this is returned.
	ErrSeatCapacityExceeded = errors.New("seat capacity exceeded")

	// ErrSubscriptionNotActive indicates a seat operation was attempted on a
	// subscription that cannot currently consume seats.
	ErrSubscriptionNotActive = errors.New("subscription is not active")

	// ErrAssignmentNotFound indicates no seat assignment exists for the user.
	ErrAssignmentNotFound = errors.New("seat assignment not found")

	// ErrOverLimitFrozen indicates assignment is frozen because persisted
	// usage already exceeds the cap (pre-existing data, never produced by
	// the assign path).
	ErrOverLimitFrozen = errors.New("subscription seat usage exceeds capacity, assignment frozen")
)

// ErrInvalidTransition builds a state machine violation error.
func ErrInvalidTransition(from, to string) error {
	return fmt.Errorf("invalid subscription status transition from %s to %s", from, to)
}
