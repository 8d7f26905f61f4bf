package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store defines subscription and usage persistence. Each user has at most
// one subscription row, so UserID serves as the conflict key for upserts.
type Store interface {
	// Get retrieves a subscription by user ID.
	// Returns ErrSubscriptionNotFound if no row exists.
	Get(ctx context.Context, userID uuid.UUID) (*Subscription, error)

	// Upsert creates or replaces the subscription for its UserID.
	// Last writer wins per user; writes for different users never interfere.
	Upsert(ctx context.Context, sub *Subscription) error

	// Update persists status/cancellation changes on an existing row.
	// Returns ErrSubscriptionNotFound if no row exists.
	Update(ctx context.Context, sub *Subscription) error
}

// UsageStore defines usage counter persistence. One counter row per user
// covers the current period; a rollover replaces the window and resets the
// count.
type UsageStore interface {
	// GetUsage retrieves the user's counter row, or nil if none exists yet.
	GetUsage(ctx context.Context, userID uuid.UUID) (*UsageCounter, error)

	// IncrementUsage atomically adds one generated quote within the given
	// window and returns the updated counter. If the stored row belongs to
	// an older window it is reset to the new window with a count of one.
	// A non-negative limit makes the increment conditional: when the stored
	// counter for the same window already reached the limit, the store
	// returns ErrQuotaExceeded without writing. Pass tier.Unlimited to skip
	// the ceiling check. Increment and ceiling check happen in one atomic
	// step so concurrent racers cannot push usage past the limit.
	IncrementUsage(ctx context.Context, userID uuid.UUID, window Window, limit int64) (*UsageCounter, error)
}
