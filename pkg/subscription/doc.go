// Package subscription implements the subscription period engine and its
// orchestration: period window computation, quota access decisions, and the
// activation/cancel/webhook flows that persist them.
//
// The engine itself is pure. PeriodWindow computes the [start, end) range a
// subscription is paid for given a tier, a billing cycle, and a reference
// instant; Decide resolves quota consumption against a tier's ceiling into
// an AccessDecision. Both are deterministic for a fixed now, which keeps
// every rule unit-testable without a database.
//
// Rule precedence for windows: an explicit admin day override beats
// everything, then the 7-day test trial, then the 100-year lifetime
// sentinel, then calendar year/month arithmetic with end-of-month clamping
// (Jan 31 + 1 month ends on the last day of February).
//
// The Service composes the engine with a tier.Catalog, a Store/UsageStore
// pair, and a BillingProvider:
//
//	svc := subscription.NewService(catalog, store, store, provider)
//
//	// checkout confirmation or admin activation
//	sub, err := svc.Activate(ctx, userID, tier.Professional, tier.CycleMonthly)
//
//	// quota check before generating a quote
//	decision, err := svc.RecordQuote(ctx, userID)
//	if errors.Is(err, subscription.ErrQuotaExceeded) {
//		// surface upgrade prompt
//	}
//
// Cancellation keeps the paid period: a canceled subscription stays allowed
// under its ceiling until the period end passes. Expired and past_due rows,
// like users without a row at all, fall back to the free tier's ceiling.
//
// All engine errors propagate to callers verbatim; nothing here retries
// internally, because every operation is pure computation plus a single
// storage round trip.
package subscription
