package outbound

import (
	"context"
	"time"
)

// RateLimiterPort limits how often a key may perform an action.
type RateLimiterPort interface {
	// Allow records one hit for key and reports whether it fits within limit per window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
