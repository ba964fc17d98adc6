package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Result reports the outcome of a limiter check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter is a sliding-window rate limiter backed by a Redis sorted set per
// key. Each hit is a member scored by its nanosecond timestamp; members
// older than the window are pruned on every check.
type Limiter struct {
	Client redis.UniversalClient
	Prefix string
}

// Allow registers a hit for the key and reports whether it stays within max
// hits per window. A nil client or non-positive limits disable the limiter.
func (l Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) (Result, error) {
	now := time.Now()
	reset := now.Add(window)
	if l.Client == nil || max <= 0 || window <= 0 {
		return Result{Allowed: true, Remaining: max, ResetAt: reset}, nil
	}

	redisKey := l.Prefix + key
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", cutoff)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{ResetAt: reset}, err
	}

	current := int(countCmd.Val())
	remaining := max - current
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   current <= max,
		Remaining: remaining,
		ResetAt:   reset,
	}, nil
}
