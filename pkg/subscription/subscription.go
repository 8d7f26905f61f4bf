package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/quoteforge/quoteforge/pkg/tier"
)

// Subscription represents a user's subscription to a tier.
// Each user has at most one subscription row; UserID is the primary key and
// upserts are conflict-resolved on it.
type Subscription struct {
	UserID             uuid.UUID
	Tier               tier.Tier
	Status             Status
	BillingCycle       tier.BillingCycle
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CanceledAt         *time.Time // set when the user cancels; period end is kept
	PaymentRef         string     // provider transaction/event reference for idempotency and audit
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

func (s *Subscription) IsCanceled() bool {
	return s.Status == StatusCanceled
}

// ExpiredAt reports whether the period window has passed at the given time.
func (s *Subscription) ExpiredAt(now time.Time) bool {
	return now.After(s.CurrentPeriodEnd)
}

// DaysRemainingAt returns the number of whole days left in the current
// period at a given time, rounding up partial days. Returns 0 once the
// period has passed. Useful for testing with fixed time values.
func (s *Subscription) DaysRemainingAt(now time.Time) int {
	remaining := s.CurrentPeriodEnd.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := remaining.Hours() / 24
	return int(days + 0.5)
}

// UsageCounter tracks quotes generated by a user within one period window.
// QuotesGenerated only ever increments; a period rollover resets the row to
// the new window rather than decrementing.
type UsageCounter struct {
	UserID          uuid.UUID
	PeriodStart     time.Time
	PeriodEnd       time.Time
	QuotesGenerated int64
}

// CoversAt reports whether the counter window overlaps the given instant.
// A stale counter from a previous period contributes zero usage.
func (u *UsageCounter) CoversAt(now time.Time) bool {
	return !now.Before(u.PeriodStart) && now.Before(u.PeriodEnd)
}
