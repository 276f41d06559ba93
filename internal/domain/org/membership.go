// Package org holds the organization membership model that seat operations
// authorize against. Role checks always read the live membership row; a
// revoked admin loses seat management on their next call.
package org

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seatwise-io/seatwise/internal/domain/tier"
)

// ErrMembershipNotFound indicates the user has no membership in the org.
var ErrMembershipNotFound = errors.New("organization membership not found")

// Membership links a user to an organization with a role.
type Membership struct {
	id        uint
	orgID     uint
	userID    uint
	role      tier.Role
	active    bool
	createdAt time.Time
	updatedAt time.Time
}

// MembershipReconstructParams carries persisted state back into the entity.
type MembershipReconstructParams struct {
	ID        uint
	OrgID     uint
	UserID    uint
	Role      tier.Role
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReconstructMembership reconstructs a membership from persistence.
func ReconstructMembership(p MembershipReconstructParams) (*Membership, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("membership ID cannot be zero")
	}
	if p.OrgID == 0 || p.UserID == 0 {
		return nil, fmt.Errorf("membership requires org and user IDs")
	}

	return &Membership{
		id:        p.ID,
		orgID:     p.OrgID,
		userID:    p.UserID,
		role:      p.Role,
		active:    p.Active,
		createdAt: p.CreatedAt,
		updatedAt: p.UpdatedAt,
	}, nil
}

func (m *Membership) ID() uint             { return m.id }
func (m *Membership) OrgID() uint          { return m.orgID }
func (m *Membership) UserID() uint         { return m.userID }
func (m *Membership) Role() tier.Role      { return m.role }
func (m *Membership) IsActive() bool       { return m.active }
func (m *Membership) CreatedAt() time.Time { return m.createdAt }
func (m *Membership) UpdatedAt() time.Time { return m.updatedAt }

// CanManageSeats reports whether this membership's role may assign or
// revoke seats at all. Tier and category gating happens separately.
func (m *Membership) CanManageSeats() bool {
	if !m.active {
		return false
	}
	return m.role == tier.RolePrincipal || m.role == tier.RoleAdmin || m.role == tier.RoleStaff
}

// CanHoldSeat reports whether this membership may receive a seat. The
// principal owns the subscription and never consumes a seat from it.
func (m *Membership) CanHoldSeat() bool {
	if !m.active {
		return false
	}
	return m.role != tier.RolePrincipal
}

// MembershipRepository reads memberships. Seat operations call GetByOrgAndUser
// on every request rather than trusting token claims.
type MembershipRepository interface {
	GetByOrgAndUser(ctx context.Context, orgID, userID uint) (*Membership, error)
	ListByOrg(ctx context.Context, orgID uint) ([]*Membership, error)
}
