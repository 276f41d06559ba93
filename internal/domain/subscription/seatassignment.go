package subscription

import (
	"fmt"
	"time"

	"github.com/seatwise-io/seatwise/internal/shared/id"
)

// SeatAssignment ties one user to one seat on a subscription. A
// (subscription, user) pair has at most one assignment row; revoking and
// reassigning reuses the row rather than stacking duplicates, which keeps
// the assignment count and seats_used in lockstep.
type SeatAssignment struct {
	id             uint
	sid            string
	subscriptionID uint
	userID         uint
	assignedBy     uint
	active         bool
	assignedAt     time.Time
	revokedAt      *time.Time
	version        int
	createdAt      time.Time
	updatedAt      time.Time
}

// NewSeatAssignment creates an active assignment of a seat to a user.
func NewSeatAssignment(subscriptionID, userID, assignedBy uint) (*SeatAssignment, error) {
	if subscriptionID == 0 {
		return nil, fmt.Errorf("subscription ID is required")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}

	now := time.Now().UTC()
	return &SeatAssignment{
		sid:            id.NewSeatSID(),
		subscriptionID: subscriptionID,
		userID:         userID,
		assignedBy:     assignedBy,
		active:         true,
		assignedAt:     now,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// SeatAssignmentReconstructParams carries persisted state back into the entity.
type SeatAssignmentReconstructParams struct {
	ID             uint
	SID            string
	SubscriptionID uint
	UserID         uint
	AssignedBy     uint
	Active         bool
	AssignedAt     time.Time
	RevokedAt      *time.Time
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReconstructSeatAssignment reconstructs a seat assignment from persistence.
func ReconstructSeatAssignment(p SeatAssignmentReconstructParams) (*SeatAssignment, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("seat assignment ID cannot be zero")
	}
	if p.SubscriptionID == 0 || p.UserID == 0 {
		return nil, fmt.Errorf("seat assignment requires subscription and user IDs")
	}

	return &SeatAssignment{
		id:             p.ID,
		sid:            p.SID,
		subscriptionID: p.SubscriptionID,
		userID:         p.UserID,
		assignedBy:     p.AssignedBy,
		active:         p.Active,
		assignedAt:     p.AssignedAt,
		revokedAt:      p.RevokedAt,
		version:        p.Version,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
	}, nil
}

func (a *SeatAssignment) ID() uint              { return a.id }
func (a *SeatAssignment) SID() string           { return a.sid }
func (a *SeatAssignment) SubscriptionID() uint  { return a.subscriptionID }
func (a *SeatAssignment) UserID() uint          { return a.userID }
func (a *SeatAssignment) AssignedBy() uint      { return a.assignedBy }
func (a *SeatAssignment) IsActive() bool        { return a.active }
func (a *SeatAssignment) AssignedAt() time.Time { return a.assignedAt }
func (a *SeatAssignment) RevokedAt() *time.Time { return a.revokedAt }
func (a *SeatAssignment) Version() int          { return a.version }
func (a *SeatAssignment) CreatedAt() time.Time  { return a.createdAt }
func (a *SeatAssignment) UpdatedAt() time.Time  { return a.updatedAt }

// SetID sets the assignment ID (only for persistence layer use)
func (a *SeatAssignment) SetID(id uint) error {
	if a.id != 0 {
		return fmt.Errorf("seat assignment ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("seat assignment ID cannot be zero")
	}
	a.id = id
	return nil
}

// Reactivate re-assigns a previously revoked seat to the same user.
// Reactivating an already active assignment is a no-op so concurrent
// duplicate requests converge on one occupied seat.
func (a *SeatAssignment) Reactivate(assignedBy uint) {
	if a.active {
		return
	}
	now := time.Now().UTC()
	a.active = true
	a.assignedBy = assignedBy
	a.assignedAt = now
	a.revokedAt = nil
	a.touch()
}

// Revoke releases the seat. Revoking an inactive assignment is a no-op.
func (a *SeatAssignment) Revoke() {
	if !a.active {
		return
	}
	now := time.Now().UTC()
	a.active = false
	a.revokedAt = &now
	a.touch()
}

func (a *SeatAssignment) touch() {
	a.updatedAt = time.Now().UTC()
	a.version++
}
