package out

import "context"

// RateLimiter throttles operations per key.
type RateLimiter interface {
	// Allow reports whether one more event for key is allowed now.
	// Keys are typically "login:<ip>:<email>".
	Allow(ctx context.Context, key string) bool

	// AllowN reports whether n events for key are allowed now.
	AllowN(ctx context.Context, key string, n int) bool
}
