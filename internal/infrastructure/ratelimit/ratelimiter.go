package ratelimit

import (
	"context"
	"time"
)

// Limit describes one caller's budget over a sliding window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// RateLimiter enforces per-key request budgets.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit Limit) (bool, error)
	Remaining(ctx context.Context, key string, limit Limit) (int64, error)
	Reset(ctx context.Context, key string) error
}
