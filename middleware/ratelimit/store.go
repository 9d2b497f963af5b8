package ratelimit

import (
	"context"
	"time"
)

// Store tracks per-key request consumption. Admit returns nil when the
// request fits the budget and ErrRateLimitExceeded when the key has
// exhausted its window.
type Store interface {
	Admit(ctx context.Context, key string, limit int, window time.Duration) error
}
