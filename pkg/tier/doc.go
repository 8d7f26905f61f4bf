// Package tier defines the subscription tier catalog: the static table
// mapping each tier to its price points, quota ceilings, and feature flags.
// Everything else in the billing core reads from it.
//
// The catalog is a pure lookup with no side effects. Users without a
// subscription row resolve to the free pseudo-tier, which carries a small
// fixed quota and is not purchasable. The admin-only test tier exists for
// trial activation and deliberately has no catalog entry.
//
// Basic usage:
//
//	catalog, err := tier.NewCatalog(ctx, tier.DefaultSource())
//	if err != nil {
//		// handle error
//	}
//
//	def, err := catalog.Lookup(tier.Starter)
//	price, err := catalog.PriceFor(tier.Starter, tier.CycleMonthly)
//
// Pricing is contractual: the built-in DefaultSource values are the ones
// shown to customers and must not drift. Operators can override the table
// with a YAML file via NewYAMLFileSource; validation rejects malformed or
// incomplete catalogs at startup.
package tier
