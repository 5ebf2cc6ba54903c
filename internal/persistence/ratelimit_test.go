package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/config"
)

func TestRateLimiterFailsOpen(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		limiter *RateLimiter
	}{
		{name: "nil limiter", limiter: nil},
		{name: "disabled", limiter: NewRateLimiter(nil, config.RateLimitConfig{Enabled: false}, zap.NewNop())},
		{name: "no redis", limiter: NewRateLimiter(nil, config.RateLimitConfig{Enabled: true, IntakeLimit: 1}, zap.NewNop())},
		{name: "redis without client", limiter: NewRateLimiter(&Redis{}, config.RateLimitConfig{Enabled: true, IntakeLimit: 1}, zap.NewNop())},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if !tc.limiter.Allow(context.Background(), "customer@example.com") {
				t.Error("Allow = false, want fail-open true")
			}
		})
	}
}

func TestRateLimiterDeniesOverLimit(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRateLimiter(&Redis{Client: client}, config.RateLimitConfig{
		Enabled:          true,
		IntakeLimit:      2,
		IntakeWindowSecs: 60,
	}, zap.NewNop())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if !limiter.Allow(ctx, "customer@example.com") {
			t.Fatalf("intake %d denied, want allowed", i+1)
		}
	}
	if limiter.Allow(ctx, "customer@example.com") {
		t.Error("intake over the limit allowed, want denied")
	}

	// Other keys have their own window.
	if !limiter.Allow(ctx, "other@example.com") {
		t.Error("unrelated key denied")
	}

	// A fresh window resets the count.
	mr.FastForward(61 * time.Second)
	if !limiter.Allow(ctx, "customer@example.com") {
		t.Error("intake in a fresh window denied")
	}
}
