// Package redis wraps the go-redis client with env-driven configuration,
// a retrying Connect helper, and a readiness probe. The returned client
// backs the rate limiter store protecting the quoting API.
package redis
