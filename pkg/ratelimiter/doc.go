// Package ratelimiter implements token bucket rate limiting with
// pluggable storage: an in-memory store for single-instance deployments
// and tests, and a Redis-backed store that keeps one shared budget
// across replicas. Middleware adapts a limiter into net/http middleware
// with standard X-RateLimit-* headers.
package ratelimiter
