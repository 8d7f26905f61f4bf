package costing

import (
	"math"
	"time"

	"github.com/quoteforge/quoteforge/pkg/tier"
)

// Material describes filament or resin consumption for a single print.
type Material struct {
	Name       string  `json:"name"`
	PricePerKg int64   `json:"price_per_kg"` // minor currency units per kilogram
	GramsUsed  float64 `json:"grams_used"`
	WastePct   float64 `json:"waste_pct"` // supports, purge, failed starts
}

// Machine describes printer wear and occupancy cost.
type Machine struct {
	Name       string        `json:"name"`
	HourlyRate int64         `json:"hourly_rate"` // minor units per hour
	PrintTime  time.Duration `json:"print_time"`
}

// Energy describes power consumption during the print.
type Energy struct {
	PowerWatts  float64 `json:"power_watts"`
	PricePerKWh int64   `json:"price_per_kwh"` // minor units per kWh
}

// Labor describes operator time: setup, post-processing, packing.
type Labor struct {
	HourlyRate int64   `json:"hourly_rate"` // minor units per hour
	Hours      float64 `json:"hours"`
}

// Input is a complete quote request for one print job.
type Input struct {
	Currency  string   `json:"currency"`
	Quantity  int      `json:"quantity"`
	MarginPct float64  `json:"margin_pct"`
	Material  Material `json:"material"`
	Machine   Machine  `json:"machine"`
	Energy    Energy   `json:"energy"`
	Labor     Labor    `json:"labor"`
}

// Breakdown is the priced result. All amounts share Input.Currency.
type Breakdown struct {
	Material tier.Money `json:"material"`
	Machine  tier.Money `json:"machine"`
	Energy   tier.Money `json:"energy"`
	Labor    tier.Money `json:"labor"`
	Subtotal tier.Money `json:"subtotal"` // per-unit costs times quantity
	Margin   tier.Money `json:"margin"`
	Total    tier.Money `json:"total"`
	PerUnit  tier.Money `json:"per_unit"`
	Quantity int        `json:"quantity"`
}

// Validate checks the input before pricing.
func (in Input) Validate() error {
	if in.Currency == "" {
		return ErrMissingCurrency
	}
	if in.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if in.MarginPct < 0 || in.MarginPct > 100 {
		return ErrInvalidMargin
	}
	if in.Material.GramsUsed < 0 || in.Material.PricePerKg < 0 || in.Material.WastePct < 0 {
		return ErrInvalidMaterial
	}
	if in.Machine.PrintTime < 0 || in.Machine.HourlyRate < 0 {
		return ErrInvalidMachine
	}
	if in.Energy.PowerWatts < 0 || in.Energy.PricePerKWh < 0 {
		return ErrInvalidEnergy
	}
	if in.Labor.Hours < 0 || in.Labor.HourlyRate < 0 {
		return ErrInvalidLabor
	}
	return nil
}

// Calculate prices the job. Per-unit component costs are rounded to the
// nearest minor unit before scaling by quantity, so the line items on
// the rendered quote always sum to the subtotal.
func Calculate(in Input) (Breakdown, error) {
	if err := in.Validate(); err != nil {
		return Breakdown{}, err
	}

	grams := in.Material.GramsUsed * (1 + in.Material.WastePct/100)
	materialUnit := roundCents(float64(in.Material.PricePerKg) * grams / 1000)

	hours := in.Machine.PrintTime.Hours()
	machineUnit := roundCents(float64(in.Machine.HourlyRate) * hours)

	kWh := in.Energy.PowerWatts / 1000 * hours
	energyUnit := roundCents(float64(in.Energy.PricePerKWh) * kWh)

	laborUnit := roundCents(float64(in.Labor.HourlyRate) * in.Labor.Hours)

	qty := int64(in.Quantity)
	material := materialUnit * qty
	machine := machineUnit * qty
	energy := energyUnit * qty
	labor := laborUnit * qty

	subtotal := material + machine + energy + labor
	margin := roundCents(float64(subtotal) * in.MarginPct / 100)
	total := subtotal + margin

	// Per-unit price rounds up so selling every unit never undercuts
	// the quoted total.
	perUnit := total / qty
	if total%qty != 0 {
		perUnit++
	}

	money := func(amount int64) tier.Money {
		return tier.Money{Amount: amount, Currency: in.Currency}
	}

	return Breakdown{
		Material: money(material),
		Machine:  money(machine),
		Energy:   money(energy),
		Labor:    money(labor),
		Subtotal: money(subtotal),
		Margin:   money(margin),
		Total:    money(total),
		PerUnit:  money(perUnit),
		Quantity: in.Quantity,
	}, nil
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}
