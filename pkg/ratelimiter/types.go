package ratelimiter

import "time"

// Result contains the outcome of a rate limit check.
type Result struct {
	Limit     int       // Bucket capacity
	Remaining int       // Tokens left after the check
	ResetAt   time.Time // When the next refill happens
}

// Allowed reports whether the request may proceed.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before retrying, 0 when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Config defines the token bucket parameters.
type Config struct {
	Capacity       int           // Maximum tokens the bucket can hold
	RefillRate     int           // Tokens added per refill interval
	RefillInterval time.Duration // How often tokens are added
}
