package entitlement

import (
	"fmt"
	"time"

	"github.com/seatwise-io/seatwise/internal/shared/id"
)

// Status is derived from the entitlement timestamps at read time. It is
// never stored, so a grant, an expiry extension, and a revocation can arrive
// in any order without a stored enum drifting out of sync.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusRevoked Status = "revoked"
)

// Source identifies how an entitlement was obtained.
type Source string

const (
	SourceSubscription Source = "subscription"
	SourcePurchase     Source = "purchase"
	SourcePromo        Source = "promo"
	SourceManual       Source = "manual"
)

func (s Source) IsValid() bool {
	switch s {
	case SourceSubscription, SourcePurchase, SourcePromo, SourceManual:
		return true
	}
	return false
}

// Entitlement is a user's right to a named capability. sourceEventID records
// the provider event that produced the grant, which is what makes reapplying
// the same event detectable.
type Entitlement struct {
	id            uint
	sid           string
	userID        uint
	name          string
	productID     string
	platform      string
	source        Source
	sourceEventID string
	grantedAt     time.Time
	expiresAt     *time.Time
	revokedAt     *time.Time
	revokeReason  *string
	version       int
	createdAt     time.Time
	updatedAt     time.Time
}

// NewEntitlement grants an entitlement. A nil expiresAt means the grant is
// perpetual until revoked.
func NewEntitlement(userID uint, name, productID, platform string, source Source, sourceEventID string, expiresAt *time.Time) (*Entitlement, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if name == "" {
		return nil, fmt.Errorf("entitlement name is required")
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("invalid entitlement source: %s", source)
	}

	now := time.Now().UTC()
	return &Entitlement{
		sid:           id.NewEntitlementSID(),
		userID:        userID,
		name:          name,
		productID:     productID,
		platform:      platform,
		source:        source,
		sourceEventID: sourceEventID,
		grantedAt:     now,
		expiresAt:     expiresAt,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// EntitlementReconstructParams carries persisted state back into the aggregate.
type EntitlementReconstructParams struct {
	ID            uint
	SID           string
	UserID        uint
	Name          string
	ProductID     string
	Platform      string
	Source        Source
	SourceEventID string
	GrantedAt     time.Time
	ExpiresAt     *time.Time
	RevokedAt     *time.Time
	RevokeReason  *string
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReconstructEntitlement reconstructs an entitlement from persistence.
func ReconstructEntitlement(p EntitlementReconstructParams) (*Entitlement, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("entitlement ID cannot be zero")
	}
	if p.UserID == 0 || p.Name == "" {
		return nil, fmt.Errorf("entitlement requires user ID and name")
	}

	return &Entitlement{
		id:            p.ID,
		sid:           p.SID,
		userID:        p.UserID,
		name:          p.Name,
		productID:     p.ProductID,
		platform:      p.Platform,
		source:        p.Source,
		sourceEventID: p.SourceEventID,
		grantedAt:     p.GrantedAt,
		expiresAt:     p.ExpiresAt,
		revokedAt:     p.RevokedAt,
		revokeReason:  p.RevokeReason,
		version:       p.Version,
		createdAt:     p.CreatedAt,
		updatedAt:     p.UpdatedAt,
	}, nil
}

func (e *Entitlement) ID() uint              { return e.id }
func (e *Entitlement) SID() string           { return e.sid }
func (e *Entitlement) UserID() uint          { return e.userID }
func (e *Entitlement) Name() string          { return e.name }
func (e *Entitlement) ProductID() string     { return e.productID }
func (e *Entitlement) Platform() string      { return e.platform }
func (e *Entitlement) Source() Source        { return e.source }
func (e *Entitlement) SourceEventID() string { return e.sourceEventID }
func (e *Entitlement) GrantedAt() time.Time  { return e.grantedAt }
func (e *Entitlement) ExpiresAt() *time.Time { return e.expiresAt }
func (e *Entitlement) RevokedAt() *time.Time { return e.revokedAt }
func (e *Entitlement) RevokeReason() *string { return e.revokeReason }
func (e *Entitlement) Version() int          { return e.version }
func (e *Entitlement) CreatedAt() time.Time  { return e.createdAt }
func (e *Entitlement) UpdatedAt() time.Time  { return e.updatedAt }

// SetID sets the entitlement ID (only for persistence layer use)
func (e *Entitlement) SetID(id uint) error {
	if e.id != 0 {
		return fmt.Errorf("entitlement ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("entitlement ID cannot be zero")
	}
	e.id = id
	return nil
}

// Status derives the current status from the timestamps. Revocation wins
// over expiry.
func (e *Entitlement) Status(now time.Time) Status {
	if e.revokedAt != nil {
		return StatusRevoked
	}
	if e.expiresAt != nil && now.After(*e.expiresAt) {
		return StatusExpired
	}
	return StatusActive
}

// IsActive reports whether the entitlement is usable at now.
func (e *Entitlement) IsActive(now time.Time) bool {
	return e.Status(now) == StatusActive
}

// ExtendExpiry applies a renewal: the expiry moves to newExpiresAt only if
// that is later than the stored one, so out-of-order renewals cannot shrink
// the window. A nil newExpiresAt makes the grant perpetual. Revocation is
// terminal: a revoked entitlement never extends, a renewal after revocation
// is a fresh grant on a new row.
func (e *Entitlement) ExtendExpiry(newExpiresAt *time.Time, sourceEventID string) {
	if e.revokedAt != nil {
		return
	}

	switch {
	case newExpiresAt == nil:
		e.expiresAt = nil
	case e.expiresAt == nil:
		// Already perpetual, a dated renewal never shrinks it.
		return
	case !newExpiresAt.After(*e.expiresAt):
		// Duplicate or out-of-order renewal, already covered.
		return
	default:
		e.expiresAt = newExpiresAt
	}

	if sourceEventID != "" {
		e.sourceEventID = sourceEventID
	}
	e.touch()
}

// Revoke withdraws the entitlement at the given time. Revoking an already
// revoked entitlement is a no-op.
func (e *Entitlement) Revoke(reason string, at time.Time) {
	if e.revokedAt != nil {
		return
	}
	at = at.UTC()
	e.revokedAt = &at
	if reason != "" {
		e.revokeReason = &reason
	}
	e.touch()
}

func (e *Entitlement) touch() {
	e.updatedAt = time.Now().UTC()
	e.version++
}
