package tier

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Definition describes a subscription tier and its price points, quota
// ceilings, and feature flags. Exactly one Definition exists per tier name.
type Definition struct {
	Tier         Tier      `yaml:"tier"`
	Name         string    `yaml:"name"`
	PriceMonthly Money     `yaml:"price_monthly"`
	PriceYearly  Money     `yaml:"price_yearly"` // one-time price for the lifetime tier
	MaxQuotes    int64     `yaml:"max_quotes"`   // -1 = unlimited
	MaxClients   int64     `yaml:"max_clients"`  // -1 = unlimited
	MaxCompanies int64     `yaml:"max_companies"`
	Features     []Feature `yaml:"features"`
}

// IsUnlimited reports whether the tier has no quote ceiling.
func (d Definition) IsUnlimited() bool {
	return d.MaxQuotes == Unlimited
}

// HasFeature reports whether the feature flag is enabled for this tier.
func (d Definition) HasFeature(f Feature) bool {
	return slices.Contains(d.Features, f)
}

// Catalog exposes tier definitions and price resolution. It is a pure
// lookup table with no side effects.
type Catalog struct {
	defs map[Tier]Definition
}

// Source defines how tier definitions are loaded into a Catalog.
type Source interface {
	Load(ctx context.Context) (map[Tier]Definition, error)
}

// NewCatalog builds a catalog from the given source and validates it.
// Use DefaultSource() for the built-in contractual price table.
func NewCatalog(ctx context.Context, src Source) (*Catalog, error) {
	if src == nil {
		panic("tier: Source is required")
	}

	defs, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}
	if err := validate(defs); err != nil {
		return nil, err
	}
	return &Catalog{defs: defs}, nil
}

// Lookup returns the definition for a tier. The free pseudo-tier resolves
// like any catalog entry; anything outside the closed enum fails with
// ErrUnknownTier.
func (c *Catalog) Lookup(t Tier) (Definition, error) {
	def, ok := c.defs[t]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownTier, t)
	}
	return def, nil
}

// PriceFor resolves the charge amount for a tier and billing cycle.
// The lifetime tier ignores the cycle: its one-time price is carried in
// PriceYearly. For all other tiers monthly selects PriceMonthly and any
// other cycle selects PriceYearly.
func (c *Catalog) PriceFor(t Tier, cycle BillingCycle) (Money, error) {
	def, err := c.Lookup(t)
	if err != nil {
		return Money{}, err
	}

	if t == Lifetime {
		return def.PriceYearly, nil
	}
	if cycle == CycleMonthly {
		return def.PriceMonthly, nil
	}
	return def.PriceYearly, nil
}

// Tiers returns the tiers present in the catalog in pricing order.
func (c *Catalog) Tiers() []Tier {
	order := []Tier{Free, Starter, Professional, Enterprise, Lifetime}
	out := make([]Tier, 0, len(c.defs))
	for _, t := range order {
		if _, ok := c.defs[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

func validate(defs map[Tier]Definition) error {
	if len(defs) == 0 {
		return errors.Join(ErrInvalidCatalog, errors.New("catalog is empty"))
	}
	for t, def := range defs {
		if def.Tier != t {
			return errors.Join(ErrInvalidCatalog,
				fmt.Errorf("tier mismatch: map key %s != definition tier %s", t, def.Tier))
		}
		if t == Test {
			return errors.Join(ErrInvalidCatalog,
				errors.New("test tier must not appear in the priced catalog"))
		}
		if def.MaxCompanies < 1 {
			return errors.Join(ErrInvalidCatalog,
				fmt.Errorf("tier %s has max_companies < 1", t))
		}
		if def.MaxQuotes < Unlimited || def.MaxClients < Unlimited {
			return errors.Join(ErrInvalidCatalog,
				fmt.Errorf("tier %s has a negative quota ceiling", t))
		}
	}
	return nil
}
