package tier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_LegacyNames(t *testing.T) {
	tests := []struct {
		raw  string
		want Tier
	}{
		{"free", TierFree},
		{"trial", TierFree},
		{"basic", TierStarter},
		{"standard", TierStarter},
		{"starter", TierStarter},
		{"lite", TierStarter},
		{"pro", TierPremium},
		{"professional", TierPremium},
		{"premium", TierPremium},
		{"premium_plus", TierPremium},
		{"school", TierEnterprise},
		{"campus", TierEnterprise},
		{"enterprise", TierEnterprise},
		{"unlimited", TierEnterprise},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalize_IsTotal(t *testing.T) {
	// Unknown or garbled billing data must map to free, never fail.
	inputs := []string{"", "  ", "gold", "PLATINUM", "premium-plus", "nil", "123", "free\x00tier", "ประถม"}

	for _, raw := range inputs {
		got := Normalize(raw)
		assert.True(t, got.IsValid(), "Normalize(%q) returned non-canonical tier %q", raw, got)
		assert.Equal(t, TierFree, got, "unknown input %q should map to free", raw)
	}
}

func TestNormalize_CaseAndWhitespace(t *testing.T) {
	assert.Equal(t, TierPremium, Normalize("  Premium "))
	assert.Equal(t, TierEnterprise, Normalize("SCHOOL"))
}

func TestTier_AtLeast(t *testing.T) {
	assert.True(t, TierEnterprise.AtLeast(TierPremium))
	assert.True(t, TierPremium.AtLeast(TierPremium))
	assert.False(t, TierStarter.AtLeast(TierPremium))
	assert.False(t, TierFree.AtLeast(TierStarter))

	// Unknown tiers rank below free.
	assert.False(t, Tier("gold").AtLeast(TierFree+"x"))
	assert.True(t, TierFree.AtLeast(Tier("gold")))
}

func TestQuotasFor_AllTiers(t *testing.T) {
	for _, tr := range []Tier{TierFree, TierStarter, TierPremium, TierEnterprise} {
		q := QuotasFor(tr)
		assert.Greater(t, q.MonthlyAllowance, 0, "tier %s", tr)
		assert.Greater(t, q.RateLimitPerMinute, 0, "tier %s", tr)
	}

	assert.False(t, QuotasFor(TierFree).HasCapability(CapabilitySeatLicenses))
	assert.True(t, QuotasFor(TierStarter).HasCapability(CapabilitySeatLicenses))
	assert.True(t, QuotasFor(TierPremium).HasCapability(CapabilityAIAssist))
	assert.False(t, QuotasFor(TierStarter).HasCapability(CapabilityAIAssist))
}

func TestCanAllocate_PrincipalBypass(t *testing.T) {
	// A principal always passes, even at free tier for a preschool.
	assert.True(t, CanAllocate(TierFree, OrgCategoryPreschool, RolePrincipal))
	assert.True(t, CanAllocate(TierFree, OrgCategoryIndividual, RolePrincipal))

	// The same combination without the principal role fails.
	assert.False(t, CanAllocate(TierFree, OrgCategoryPreschool, RoleAdmin))
}

func TestCanAllocate_CategoryThresholds(t *testing.T) {
	tests := []struct {
		name     string
		tier     Tier
		category OrgCategory
		role     Role
		want     bool
	}{
		{"preschool starter admin", TierStarter, OrgCategoryPreschool, RoleAdmin, true},
		{"preschool free admin", TierFree, OrgCategoryPreschool, RoleAdmin, false},
		{"k12 premium admin", TierPremium, OrgCategoryK12, RoleAdmin, true},
		{"k12 starter admin", TierStarter, OrgCategoryK12, RoleAdmin, false},
		{"k12 enterprise staff", TierEnterprise, OrgCategoryK12, RoleStaff, true},
		{"individual enterprise admin", TierEnterprise, OrgCategoryIndividual, RoleAdmin, false},
		{"unknown category", TierEnterprise, OrgCategory("district"), RoleAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAllocate(tt.tier, tt.category, tt.role))
		})
	}
}
