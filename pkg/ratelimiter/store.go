package ratelimiter

import (
	"context"
	"time"
)

// Store is a rate limit storage backend.
type Store interface {
	// ConsumeTokens attempts to consume tokens for the key. A negative
	// remaining count means the request must be denied.
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)

	// Reset clears the rate limit state for the key.
	Reset(ctx context.Context, key string) error
}
