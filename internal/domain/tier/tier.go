// Package tier centralizes plan tier normalization, quota lookup, and
// allocation gating. All other components consume only the four canonical
// tiers; legacy tier names must never leak past this package.
package tier

import "strings"

// Tier is a normalized subscription plan level.
type Tier string

const (
	TierFree       Tier = "free"
	TierStarter    Tier = "starter"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

// rank orders tiers for gating comparisons.
var rank = map[Tier]int{
	TierFree:       0,
	TierStarter:    1,
	TierPremium:    2,
	TierEnterprise: 3,
}

// legacyNames maps every tier name ever written by billing, including
// garbled and pre-rename values, onto a canonical tier.
var legacyNames = map[string]Tier{
	"free":         TierFree,
	"trial":        TierFree,
	"basic":        TierStarter,
	"starter":      TierStarter,
	"standard":     TierStarter,
	"lite":         TierStarter,
	"pro":          TierPremium,
	"professional": TierPremium,
	"premium":      TierPremium,
	"premium_plus": TierPremium,
	"school":       TierEnterprise,
	"campus":       TierEnterprise,
	"enterprise":   TierEnterprise,
	"unlimited":    TierEnterprise,
}

// Normalize maps a raw (possibly legacy) tier name to a canonical Tier.
// It is total: unknown or garbled input maps to TierFree. This is a
// defensive default for bad billing data, not a validation path, so it
// never returns an error.
func Normalize(raw string) Tier {
	name := strings.ToLower(strings.TrimSpace(raw))
	if t, ok := legacyNames[name]; ok {
		return t
	}
	return TierFree
}

// String returns the tier name.
func (t Tier) String() string {
	return string(t)
}

// IsValid reports whether t is one of the four canonical tiers.
func (t Tier) IsValid() bool {
	_, ok := rank[t]
	return ok
}

// AtLeast reports whether t ranks at or above other. Unknown tiers rank
// below free.
func (t Tier) AtLeast(other Tier) bool {
	return rank[t] >= rank[other]
}
