package tier

// Capability names a feature gated by tier.
type Capability string

const (
	CapabilitySeatLicenses   Capability = "seat_licenses"
	CapabilityAIAssist       Capability = "ai_assist"
	CapabilityReports        Capability = "reports"
	CapabilityBulkMessaging  Capability = "bulk_messaging"
	CapabilityPrioritySupprt Capability = "priority_support"
)

// Quotas describes the allowances attached to a tier.
type Quotas struct {
	MonthlyAllowance   int
	RateLimitPerMinute int
	Capabilities       map[Capability]bool
}

// HasCapability reports whether the quota set includes the capability.
func (q Quotas) HasCapability(c Capability) bool {
	return q.Capabilities[c]
}

var quotaTable = map[Tier]Quotas{
	TierFree: {
		MonthlyAllowance:   20,
		RateLimitPerMinute: 5,
		Capabilities:       map[Capability]bool{},
	},
	TierStarter: {
		MonthlyAllowance:   200,
		RateLimitPerMinute: 20,
		Capabilities: map[Capability]bool{
			CapabilitySeatLicenses: true,
			CapabilityReports:      true,
		},
	},
	TierPremium: {
		MonthlyAllowance:   2000,
		RateLimitPerMinute: 60,
		Capabilities: map[Capability]bool{
			CapabilitySeatLicenses:  true,
			CapabilityReports:       true,
			CapabilityAIAssist:      true,
			CapabilityBulkMessaging: true,
		},
	},
	TierEnterprise: {
		MonthlyAllowance:   20000,
		RateLimitPerMinute: 240,
		Capabilities: map[Capability]bool{
			CapabilitySeatLicenses:   true,
			CapabilityReports:        true,
			CapabilityAIAssist:       true,
			CapabilityBulkMessaging:  true,
			CapabilityPrioritySupprt: true,
		},
	},
}

// QuotasFor returns the quota set for a tier. Pure lookup; unknown tiers
// (which Normalize never produces) get the free quotas.
func QuotasFor(t Tier) Quotas {
	if q, ok := quotaTable[t]; ok {
		return q
	}
	return quotaTable[TierFree]
}
