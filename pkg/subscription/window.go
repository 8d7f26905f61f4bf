package subscription

import (
	"fmt"
	"time"

	"github.com/quoteforge/quoteforge/pkg/tier"
)

// lifetimeYears is the "practically forever" sentinel for lifetime access.
// A finite window keeps downstream date arithmetic from overflowing.
const lifetimeYears = 100

// trialDays is the fixed window for the admin-only test tier.
const trialDays = 7

// Window is the [Start, End) range during which a subscription's ceiling
// applies. End is always strictly after Start.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowOption adjusts period window computation.
type WindowOption func(*windowOptions)

type windowOptions struct {
	dayOverride *int
}

// WithDayOverride forces the window to exactly the given number of days.
// Used by manual admin activation; it takes precedence over every tier and
// cycle rule. Non-positive values are rejected with ErrInvalidOverride.
func WithDayOverride(days int) WindowOption {
	return func(o *windowOptions) {
		o.dayOverride = &days
	}
}

// PeriodWindow computes the active period for a new or renewed subscription.
// It is a pure function of its inputs: calling it twice with the same now
// yields identical windows.
//
// Rule precedence:
//  1. explicit day override (admin activation)
//  2. test tier: fixed 7 days regardless of cycle
//  3. lifetime tier or cycle: 100-year sentinel
//  4. yearly: +1 calendar year, monthly or unspecified: +1 calendar month
//
// Calendar arithmetic clamps to the last valid day of the target month, so
// Jan 31 + 1 month ends on the last day of February.
func PeriodWindow(t tier.Tier, cycle tier.BillingCycle, now time.Time, opts ...WindowOption) (Window, error) {
	var o windowOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.dayOverride != nil {
		days := *o.dayOverride
		if days <= 0 {
			return Window{}, fmt.Errorf("%w: got %d", ErrInvalidOverride, days)
		}
		return Window{Start: now, End: now.AddDate(0, 0, days)}, nil
	}

	if t == tier.Test {
		return Window{Start: now, End: now.AddDate(0, 0, trialDays)}, nil
	}

	if cycle == tier.CycleLifetime || t == tier.Lifetime {
		return Window{Start: now, End: addMonthsClamped(now, lifetimeYears*12)}, nil
	}

	if cycle == tier.CycleYearly {
		return Window{Start: now, End: addMonthsClamped(now, 12)}, nil
	}

	return Window{Start: now, End: addMonthsClamped(now, 1)}, nil
}

// addMonthsClamped advances t by the given number of calendar months,
// clamping the day-of-month to the last valid day of the target month.
// time.Time.AddDate normalizes overflow instead (Jan 31 + 1 month becomes
// Mar 2/3), which would silently stretch billing periods.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	// Day 1 of the target month; time.Date normalizes month overflow.
	first := time.Date(year, month+time.Month(months), 1, hour, minute, sec, t.Nanosecond(), t.Location())
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// daysInMonth returns the number of days in the given month.
// Day 0 of the following month is the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
