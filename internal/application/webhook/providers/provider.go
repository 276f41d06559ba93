// Package providers holds the payment provider adapters. Each adapter
// verifies a provider's signature scheme and maps its payload into the
// normalized Notification the webhook pipeline consumes.
package providers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/seatwise-io/seatwise/internal/domain/webhook"
)

// Notification is the provider-independent view of a verified webhook.
// Amounts are in the smallest currency unit to match the stored
// subscription price.
type Notification struct {
	EventID         string
	EventType       webhook.EventType
	SubscriptionSID string
	AmountCents     int64
	Currency        string
	Status          string
	// PeriodEnd is the provider-reported new period end for successful
	// payments; zero when the event carries none.
	PeriodEnd  time.Time
	OccurredAt time.Time
}

// Provider verifies and decodes one payment provider's notifications.
// VerifyAndParse must reject any payload whose signature does not verify
// against the raw body before reading a single field from it. Decode parses
// a payload without verification; it is only for re-processing archived
// payloads that were verified at receipt.
type Provider interface {
	Name() string
	VerifyAndParse(r *http.Request, body []byte) (*Notification, error)
	Decode(body []byte) (*Notification, error)
}

// Registry is the static provider table built at startup. Lookups never
// mutate it, so it is safe for concurrent use.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

// Get returns the adapter for the provider named in the webhook path.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", webhook.ErrUnknownProvider, name)
	}
	return p, nil
}

// Names returns the registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
