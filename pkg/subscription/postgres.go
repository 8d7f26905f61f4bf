package subscription

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quoteforge/quoteforge/pkg/pg"
	"github.com/quoteforge/quoteforge/pkg/tier"
)

// PostgresStore implements Store and UsageStore on a pgx connection pool.
// It is safe for concurrent use; per-user atomicity comes from the
// single-statement upserts below, not from application locks.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("subscription: pgxpool.Pool is required")
	}
	return &PostgresStore{pool: pool}
}

const getSubscriptionQuery = `
SELECT user_id, tier, status, billing_cycle, current_period_start, current_period_end,
       canceled_at, payment_ref, created_at, updated_at
FROM subscriptions
WHERE user_id = $1`

func (s *PostgresStore) Get(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	var (
		sub     Subscription
		rawTier string
		status  string
		cycle   string
	)

	err := s.pool.QueryRow(ctx, getSubscriptionQuery, userID).Scan(
		&sub.UserID, &rawTier, &status, &cycle,
		&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd,
		&sub.CanceledAt, &sub.PaymentRef, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if pg.IsNotFoundError(err) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}

	// A malformed tier in storage is a data corruption signal, not a
	// reason to silently downgrade the user.
	parsed, err := tier.Parse(rawTier)
	if err != nil {
		return nil, err
	}
	sub.Tier = parsed
	sub.Status = Status(status)
	sub.BillingCycle = tier.BillingCycle(cycle)
	return &sub, nil
}

const upsertSubscriptionQuery = `
INSERT INTO subscriptions (user_id, tier, status, billing_cycle, current_period_start,
                           current_period_end, canceled_at, payment_ref, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id) DO UPDATE SET
    tier = EXCLUDED.tier,
    status = EXCLUDED.status,
    billing_cycle = EXCLUDED.billing_cycle,
    current_period_start = EXCLUDED.current_period_start,
    current_period_end = EXCLUDED.current_period_end,
    canceled_at = EXCLUDED.canceled_at,
    payment_ref = EXCLUDED.payment_ref,
    updated_at = EXCLUDED.updated_at`

func (s *PostgresStore) Upsert(ctx context.Context, sub *Subscription) error {
	_, err := s.pool.Exec(ctx, upsertSubscriptionQuery,
		sub.UserID, string(sub.Tier), string(sub.Status), string(sub.BillingCycle),
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd,
		sub.CanceledAt, sub.PaymentRef, sub.CreatedAt, sub.UpdatedAt,
	)
	return err
}

const updateSubscriptionQuery = `
UPDATE subscriptions
SET status = $2, canceled_at = $3, updated_at = $4
WHERE user_id = $1`

// Update persists lifecycle changes only. Tier and period columns are owned
// by the activation flow and deliberately untouched here.
func (s *PostgresStore) Update(ctx context.Context, sub *Subscription) error {
	tag, err := s.pool.Exec(ctx, updateSubscriptionQuery,
		sub.UserID, string(sub.Status), sub.CanceledAt, sub.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

const getUsageQuery = `
SELECT user_id, period_start, period_end, quotes_generated
FROM usage_counters
WHERE user_id = $1`

func (s *PostgresStore) GetUsage(ctx context.Context, userID uuid.UUID) (*UsageCounter, error) {
	var counter UsageCounter
	err := s.pool.QueryRow(ctx, getUsageQuery, userID).Scan(
		&counter.UserID, &counter.PeriodStart, &counter.PeriodEnd, &counter.QuotesGenerated,
	)
	if pg.IsNotFoundError(err) {
		return nil, nil // no counter yet means zero usage
	}
	if err != nil {
		return nil, err
	}
	return &counter, nil
}

// incrementUsageQuery bumps the counter atomically. When the stored row
// belongs to an older period the count resets to 1 under the new window,
// which is the rollover rule: one counter row overlapping now per user.
// The WHERE clause makes the increment conditional on the ceiling ($4,
// negative = unlimited): a same-window row already at the limit updates
// nothing and the statement returns no row. Concurrent racers on the last
// slot therefore serialize inside Postgres instead of all slipping past an
// application-level check.
const incrementUsageQuery = `
INSERT INTO usage_counters (user_id, period_start, period_end, quotes_generated)
VALUES ($1, $2, $3, 1)
ON CONFLICT (user_id) DO UPDATE SET
    quotes_generated = CASE
        WHEN usage_counters.period_start = EXCLUDED.period_start
        THEN usage_counters.quotes_generated + 1
        ELSE 1
    END,
    period_start = EXCLUDED.period_start,
    period_end = EXCLUDED.period_end
WHERE $4::bigint < 0
   OR usage_counters.period_start <> EXCLUDED.period_start
   OR usage_counters.quotes_generated < $4::bigint
RETURNING user_id, period_start, period_end, quotes_generated`

func (s *PostgresStore) IncrementUsage(ctx context.Context, userID uuid.UUID, window Window, limit int64) (*UsageCounter, error) {
	var counter UsageCounter
	err := s.pool.QueryRow(ctx, incrementUsageQuery, userID, window.Start, window.End, limit).Scan(
		&counter.UserID, &counter.PeriodStart, &counter.PeriodEnd, &counter.QuotesGenerated,
	)
	if pg.IsNotFoundError(err) {
		return nil, ErrQuotaExceeded
	}
	if err != nil {
		return nil, err
	}
	return &counter, nil
}

var _ Store = (*PostgresStore)(nil)
var _ UsageStore = (*PostgresStore)(nil)
