package tier

import (
	"context"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// StaticSource serves a fixed in-memory definition table.
type StaticSource map[Tier]Definition

func (s StaticSource) Load(_ context.Context) (map[Tier]Definition, error) {
	out := make(map[Tier]Definition, len(s))
	for t, def := range s {
		out[t] = def
	}
	return out, nil
}

// DefaultSource returns the built-in contractual price table. These values
// are user-facing and must be reproduced bit-for-bit; any change here is a
// pricing change.
func DefaultSource() Source {
	eur := func(cents int64) Money { return Money{Amount: cents, Currency: "EUR"} }

	return StaticSource{
		Free: {
			Tier:         Free,
			Name:         "Free",
			PriceMonthly: eur(0),
			PriceYearly:  eur(0),
			MaxQuotes:    3,
			MaxClients:   3,
			MaxCompanies: 1,
			Features:     []Feature{FeaturePDFGeneration},
		},
		Starter: {
			Tier:         Starter,
			Name:         "Starter",
			PriceMonthly: eur(1990),
			PriceYearly:  eur(19900),
			MaxQuotes:    50,
			MaxClients:   20,
			MaxCompanies: 1,
			Features: []Feature{
				FeaturePDFGeneration,
				FeatureQuoteHistory,
				FeatureDashboard,
			},
		},
		Professional: {
			Tier:         Professional,
			Name:         "Professional",
			PriceMonthly: eur(4990),
			PriceYearly:  eur(49900),
			MaxQuotes:    Unlimited,
			MaxClients:   Unlimited,
			MaxCompanies: 3,
			Features: []Feature{
				FeaturePDFGeneration,
				FeatureQuoteHistory,
				FeatureDashboard,
				FeatureDataExport,
				FeatureAPIAccess,
			},
		},
		Enterprise: {
			Tier:         Enterprise,
			Name:         "Enterprise",
			PriceMonthly: eur(9990),
			PriceYearly:  eur(99900),
			MaxQuotes:    Unlimited,
			MaxClients:   Unlimited,
			MaxCompanies: 999,
			Features: []Feature{
				FeaturePDFGeneration,
				FeatureQuoteHistory,
				FeatureDashboard,
				FeatureDataExport,
				FeatureWhiteLabel,
				FeaturePrioritySupport,
				FeatureAPIAccess,
			},
		},
		Lifetime: {
			Tier:         Lifetime,
			Name:         "Lifetime",
			PriceMonthly: eur(0),
			PriceYearly:  eur(149700), // one-time
			MaxQuotes:    Unlimited,
			MaxClients:   Unlimited,
			MaxCompanies: 999,
			Features: []Feature{
				FeaturePDFGeneration,
				FeatureQuoteHistory,
				FeatureDashboard,
				FeatureDataExport,
				FeatureWhiteLabel,
				FeaturePrioritySupport,
				FeatureAPIAccess,
			},
		},
	}
}

// YAMLSource loads tier definitions from a YAML document. It lets operators
// override the built-in table without a rebuild; the catalog validation
// still applies, so a broken file fails at startup rather than at checkout.
type YAMLSource struct {
	reader io.Reader
}

// NewYAMLSource creates a source reading from r.
func NewYAMLSource(r io.Reader) *YAMLSource {
	return &YAMLSource{reader: r}
}

// NewYAMLFileSource creates a source reading from a file path at load time.
func NewYAMLFileSource(path string) Source {
	return yamlFileSource(path)
}

type yamlFileSource string

func (p yamlFileSource) Load(ctx context.Context) (map[Tier]Definition, error) {
	f, err := os.Open(string(p))
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}
	defer f.Close()
	return NewYAMLSource(f).Load(ctx)
}

func (s *YAMLSource) Load(_ context.Context) (map[Tier]Definition, error) {
	if s.reader == nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, errors.New("nil reader"))
	}

	raw, err := io.ReadAll(s.reader)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	var doc struct {
		Tiers []Definition `yaml:"tiers"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	defs := make(map[Tier]Definition, len(doc.Tiers))
	for _, def := range doc.Tiers {
		if _, err := Parse(string(def.Tier)); err != nil {
			return nil, err
		}
		defs[def.Tier] = def
	}
	return defs, nil
}
