package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// SendLimiter throttles outbound Telegram sends across the whole worker
// pool. Telegram enforces a global per-bot message rate; one shared token
// bucket keeps all workers under it combined.
// Burst equals the rate so no extra capacity is "saved up" beyond the
// configured per-second maximum.
type SendLimiter struct {
	limiter *rate.Limiter
}

// New creates a SendLimiter granting ratePerSec tokens per second.
func New(ratePerSec int) *SendLimiter {
	return &SendLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)}
}

// Wait blocks until the limiter grants a token.
// Called by each worker immediately before its first transport attempt.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (sl *SendLimiter) Wait(ctx context.Context) error {
	return sl.limiter.Wait(ctx)
}
