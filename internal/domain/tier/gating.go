package tier

// OrgCategory is the class of subscribing entity.
type OrgCategory string

const (
	OrgCategoryPreschool  OrgCategory = "preschool"
	OrgCategoryK12        OrgCategory = "k12"
	OrgCategoryIndividual OrgCategory = "individual"
)

// IsValid reports whether the category is known.
func (c OrgCategory) IsValid() bool {
	switch c {
	case OrgCategoryPreschool, OrgCategoryK12, OrgCategoryIndividual:
		return true
	}
	return false
}

// Role is the caller's role within the subscribing organization.
type Role string

const (
	RolePrincipal Role = "principal"
	RoleAdmin     Role = "admin"
	RoleStaff     Role = "staff"
	RoleMember    Role = "member"
)

// IsValid reports whether the role is known.
func (r Role) IsValid() bool {
	switch r {
	case RolePrincipal, RoleAdmin, RoleStaff, RoleMember:
		return true
	}
	return false
}

// CanAllocate is the seat-allocation gating predicate. A caller holding the
// principal role always passes regardless of tier (escape hatch for account
// owners). Otherwise preschool organizations require at least starter, K-12
// requires at least premium, and individual accounts never qualify.
//
// Callers must re-evaluate this on every operation against the
// subscription's live tier; the result must not be cached since the tier
// can change between calls.
func CanAllocate(t Tier, category OrgCategory, callerRole Role) bool {
	if callerRole == RolePrincipal {
		return true
	}

	switch category {
	case OrgCategoryPreschool:
		return t.AtLeast(TierStarter)
	case OrgCategoryK12:
		return t.AtLeast(TierPremium)
	default:
		// Individual accounts and unknown categories never allocate seats.
		return false
	}
}
