package subscription

import (
	"time"

	"github.com/quoteforge/quoteforge/pkg/tier"
)

// AccessDecision is the allow/block verdict of a quota check plus the usage
// counters behind it. It is derived fresh on every check and never cached
// across requests.
type AccessDecision struct {
	Tier        tier.Tier `json:"tier"`
	Status      Status    `json:"status"`
	Current     int64     `json:"current"`
	Max         *int64    `json:"max"`       // nil for unlimited tiers
	Remaining   *int64    `json:"remaining"` // nil for unlimited tiers
	IsUnlimited bool      `json:"is_unlimited"`
	Allowed     bool      `json:"allowed"`
}

// Decide resolves quota consumption against the configured ceiling.
//
// A missing subscription row, an expired or past_due status, or a period end
// in the past all downgrade the decision to the free tier's ceiling. A
// canceled subscription keeps its paid ceiling until the period end passes:
// cancellation does not revoke already-paid-for access.
func Decide(catalog *tier.Catalog, sub *Subscription, usage *UsageCounter, now time.Time) (AccessDecision, error) {
	effective := tier.Free
	var status Status
	if sub != nil {
		status = sub.Status
		if sub.Status.grantsAccess() && !sub.ExpiredAt(now) {
			effective = sub.Tier
		}
	}

	def, err := effectiveDefinition(catalog, effective)
	if err != nil {
		return AccessDecision{}, err
	}

	var current int64
	if usage != nil && usage.CoversAt(now) {
		current = usage.QuotesGenerated
	}

	decision := AccessDecision{
		Tier:        effective,
		Status:      status,
		Current:     current,
		IsUnlimited: def.IsUnlimited(),
	}

	if decision.IsUnlimited {
		decision.Allowed = true
		return decision, nil
	}

	remaining := max(def.MaxQuotes-current, 0)
	decision.Max = &def.MaxQuotes
	decision.Remaining = &remaining
	decision.Allowed = current < def.MaxQuotes
	return decision, nil
}

// effectiveDefinition resolves the quota definition for a tier. The test
// trial has no priced catalog entry; it grants the professional tier's
// ceilings and features for its 7-day window.
func effectiveDefinition(catalog *tier.Catalog, t tier.Tier) (tier.Definition, error) {
	if t == tier.Test {
		return catalog.Lookup(tier.Professional)
	}
	return catalog.Lookup(t)
}
