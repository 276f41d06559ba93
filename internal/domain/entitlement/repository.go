package entitlement

import (
	"context"
	"time"
)

// Repository persists entitlements.
type Repository interface {
	Create(ctx context.Context, ent *Entitlement) error
	Update(ctx context.Context, ent *Entitlement) error
	GetByID(ctx context.Context, id uint) (*Entitlement, error)
	GetBySourceEventID(ctx context.Context, sourceEventID string) (*Entitlement, error)

	// GetByUserAndName returns the live grant for the pair; revoked rows are
	// audit history and never come back from this lookup.
	GetByUserAndName(ctx context.Context, userID uint, name string) (*Entitlement, error)
	ListByUser(ctx context.Context, userID uint) ([]*Entitlement, error)

	// FindExpiring returns unrevoked entitlements whose expiry falls before
	// the cutoff, for the expiry sweep.
	FindExpiring(ctx context.Context, cutoff time.Time, limit int) ([]*Entitlement, error)
}
