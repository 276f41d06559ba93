package webhook

import (
	"context"
	"time"
)

// Repository persists webhook events.
type Repository interface {
	// RecordIfNew inserts the event, relying on the unique
	// (provider, provider_event_id) index. It returns isNew=false without
	// error when the pair was already recorded, in which case the stored
	// event is returned instead of the argument.
	RecordIfNew(ctx context.Context, event *Event) (stored *Event, isNew bool, err error)

	Update(ctx context.Context, event *Event) error
	GetByProviderEventID(ctx context.Context, provider, providerEventID string) (*Event, error)

	// FindUnprocessed returns signature-verified events that were recorded
	// but whose effects were not applied, older than the cutoff, for the
	// retry sweep. Unverified audit rows are never returned.
	FindUnprocessed(ctx context.Context, cutoff time.Time, maxAttempts, limit int) ([]*Event, error)
}
