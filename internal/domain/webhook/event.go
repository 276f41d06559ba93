package webhook

import (
	"fmt"
	"time"

	"github.com/seatwise-io/seatwise/internal/shared/id"
)

// EventType classifies the lifecycle meaning of a provider notification
// after provider-specific decoding.
type EventType string

const (
	EventPaymentSucceeded      EventType = "payment_succeeded"
	EventPaymentFailed         EventType = "payment_failed"
	EventSubscriptionCancelled EventType = "subscription_cancelled"
	EventRefunded              EventType = "refunded"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventPaymentSucceeded, EventPaymentFailed, EventSubscriptionCancelled, EventRefunded:
		return true
	}
	return false
}

// Event is the durable record of a received provider notification. The
// (provider, providerEventID) pair is unique in storage; inserting it is the
// exactly-once gate for applying the event's effects.
type Event struct {
	id              uint
	sid             string
	provider        string
	providerEventID string
	eventType       EventType
	subscriptionID  uint
	rawPayload      []byte
	signatureValid  bool
	receivedAt      time.Time
	processedAt     *time.Time
	processError    *string
	attempts        int
	createdAt       time.Time
	updatedAt       time.Time
}

// NewEvent records a verified provider notification prior to processing.
func NewEvent(provider, providerEventID string, eventType EventType, subscriptionID uint, rawPayload []byte) (*Event, error) {
	if provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if providerEventID == "" {
		return nil, fmt.Errorf("provider event ID is required")
	}
	if !eventType.IsValid() {
		return nil, fmt.Errorf("invalid event type: %s", eventType)
	}

	now := time.Now().UTC()
	return &Event{
		sid:             id.NewEventSID(),
		provider:        provider,
		providerEventID: providerEventID,
		eventType:       eventType,
		subscriptionID:  subscriptionID,
		rawPayload:      rawPayload,
		signatureValid:  true,
		receivedAt:      now,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// NewUnverifiedEvent archives a delivery whose signature did not verify or
// whose payload did not parse. Nothing in an unverified payload can be
// trusted, including any event ID it claims, so the row gets its own SID as
// the provider event ID. Unverified rows are audit records only; the retry
// sweep never picks them up.
func NewUnverifiedEvent(provider string, rawPayload []byte) (*Event, error) {
	if provider == "" {
		return nil, fmt.Errorf("provider is required")
	}

	now := time.Now().UTC()
	sid := id.NewEventSID()
	return &Event{
		sid:             sid,
		provider:        provider,
		providerEventID: sid,
		subscriptionID:  0,
		rawPayload:      rawPayload,
		signatureValid:  false,
		receivedAt:      now,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// EventReconstructParams carries persisted state back into the entity.
type EventReconstructParams struct {
	ID              uint
	SID             string
	Provider        string
	ProviderEventID string
	EventType       EventType
	SubscriptionID  uint
	RawPayload      []byte
	SignatureValid  bool
	ReceivedAt      time.Time
	ProcessedAt     *time.Time
	ProcessError    *string
	Attempts        int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReconstructEvent reconstructs a webhook event from persistence.
func ReconstructEvent(p EventReconstructParams) (*Event, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("event ID cannot be zero")
	}
	if p.Provider == "" || p.ProviderEventID == "" {
		return nil, fmt.Errorf("event requires provider and provider event ID")
	}

	return &Event{
		id:              p.ID,
		sid:             p.SID,
		provider:        p.Provider,
		providerEventID: p.ProviderEventID,
		eventType:       p.EventType,
		subscriptionID:  p.SubscriptionID,
		rawPayload:      p.RawPayload,
		signatureValid:  p.SignatureValid,
		receivedAt:      p.ReceivedAt,
		processedAt:     p.ProcessedAt,
		processError:    p.ProcessError,
		attempts:        p.Attempts,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
	}, nil
}

func (e *Event) ID() uint                { return e.id }
func (e *Event) SID() string             { return e.sid }
func (e *Event) Provider() string        { return e.provider }
func (e *Event) ProviderEventID() string { return e.providerEventID }
func (e *Event) EventType() EventType    { return e.eventType }
func (e *Event) SubscriptionID() uint    { return e.subscriptionID }
func (e *Event) RawPayload() []byte      { return e.rawPayload }
func (e *Event) SignatureValid() bool    { return e.signatureValid }
func (e *Event) ReceivedAt() time.Time   { return e.receivedAt }
func (e *Event) ProcessedAt() *time.Time { return e.processedAt }
func (e *Event) ProcessError() *string   { return e.processError }
func (e *Event) Attempts() int           { return e.attempts }
func (e *Event) CreatedAt() time.Time    { return e.createdAt }
func (e *Event) UpdatedAt() time.Time    { return e.updatedAt }

// SetID sets the event ID (only for persistence layer use)
func (e *Event) SetID(id uint) error {
	if e.id != 0 {
		return fmt.Errorf("event ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("event ID cannot be zero")
	}
	e.id = id
	return nil
}

// IsProcessed reports whether the event's effects have been applied.
func (e *Event) IsProcessed() bool {
	return e.processedAt != nil
}

// MarkProcessed records successful application of the event.
func (e *Event) MarkProcessed() {
	now := time.Now().UTC()
	e.processedAt = &now
	e.processError = nil
	e.attempts++
	e.updatedAt = now
}

// MarkFailed records a processing failure; the retry sweep picks the event
// up again later.
func (e *Event) MarkFailed(reason string) {
	e.processError = &reason
	e.attempts++
	e.updatedAt = time.Now().UTC()
}
