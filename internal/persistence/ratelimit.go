package persistence

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/config"
)

// RateLimiter bounds ticket intake per key using a fixed redis window.
// When redis is unreachable the limiter fails open so intake never depends
// on cache availability.
type RateLimiter struct {
	redis  *Redis
	cfg    config.RateLimitConfig
	logger *zap.Logger
}

// NewRateLimiter builds the limiter; a nil redis disables it.
func NewRateLimiter(r *Redis, cfg config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{redis: r, cfg: cfg, logger: logger}
}

// Allow reports whether another intake is permitted for the key within the
// current window.
func (l *RateLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || !l.cfg.Enabled || l.redis == nil || l.redis.Client == nil {
		return true
	}

	redisKey := "intake:" + key
	count, err := l.redis.Client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.Warn("rate limiter unavailable; allowing request", zap.Error(err))
		return true
	}
	if count == 1 {
		if err := l.redis.Client.Expire(ctx, redisKey, l.cfg.IntakeWindow()).Err(); err != nil {
			l.logger.Warn("rate limiter expire failed", zap.Error(err))
		}
	}
	return count <= int64(l.cfg.IntakeLimit)
}
