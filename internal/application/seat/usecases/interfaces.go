package usecases

import (
	"context"

	"github.com/seatwise-io/seatwise/internal/domain/subscription"
)

// TransactionRunner runs a function inside a database transaction. The seat
// capacity increment, the assignment write, and the entitlement grant must
// commit or roll back together.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SeatChangeNotifier delivers best-effort notifications about seat changes.
// Notification failures never affect the seat operation's outcome.
type SeatChangeNotifier interface {
	NotifySeatAssigned(ctx context.Context, sub *subscription.Subscription, userID uint) error
	NotifySeatRevoked(ctx context.Context, sub *subscription.Subscription, userID uint) error
}
