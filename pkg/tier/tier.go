package tier

import "fmt"

// Tier identifies a subscription level with fixed pricing and quota ceilings.
type Tier string

const (
	// Free is the implicit tier for users without a subscription row.
	// It is not part of the priced catalog and cannot be purchased.
	Free Tier = "free"

	Starter      Tier = "starter"
	Professional Tier = "professional"
	Enterprise   Tier = "enterprise"
	Lifetime     Tier = "lifetime"

	// Test is an admin-only promotional trial tier. It has no price entry
	// and always produces a fixed 7-day period window.
	Test Tier = "test"
)

// Parse converts a raw tier string into a Tier.
// Returns ErrUnknownTier for anything outside the closed set so callers
// never operate on a guessed tier.
func Parse(s string) (Tier, error) {
	switch Tier(s) {
	case Free, Starter, Professional, Enterprise, Lifetime, Test:
		return Tier(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
	}
}

// Paid reports whether the tier belongs to the priced catalog.
func (t Tier) Paid() bool {
	switch t {
	case Starter, Professional, Enterprise, Lifetime:
		return true
	default:
		return false
	}
}

// Feature represents a tier-specific capability that can be enabled/disabled.
type Feature string

const (
	FeaturePDFGeneration   Feature = "pdf_generation"
	FeatureQuoteHistory    Feature = "quote_history"
	FeatureDashboard       Feature = "dashboard"
	FeatureDataExport      Feature = "data_export"
	FeatureWhiteLabel      Feature = "white_label"
	FeaturePrioritySupport Feature = "priority_support"
	FeatureAPIAccess       Feature = "api_access"
)

// BillingCycle represents the billing frequency chosen at checkout.
type BillingCycle string

const (
	CycleMonthly  BillingCycle = "monthly"
	CycleYearly   BillingCycle = "yearly"
	CycleLifetime BillingCycle = "lifetime"
)

const (
	// Unlimited indicates no ceiling for a quota (-1 chosen for SQL compatibility).
	Unlimited int64 = -1
)
