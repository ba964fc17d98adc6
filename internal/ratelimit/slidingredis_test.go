package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLimiterAllowSlidingWindow(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	limiter := Limiter{Client: client, Prefix: "test:"}

	ctx := context.Background()
	window := 2 * time.Second
	max := 2

	for i := 0; i < max; i++ {
		res, err := limiter.Allow(ctx, "checkout", window, max)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("expected request %d to be allowed", i)
		}
		if res.Remaining != max-(i+1) {
			t.Fatalf("unexpected remaining: %d", res.Remaining)
		}
	}

	res, err := limiter.Allow(ctx, "checkout", window, max)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if res.Allowed {
		t.Fatal("expected third request to be rejected")
	}
	if res.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", res.Remaining)
	}

	mr.FastForward(window)

	res, err = limiter.Allow(ctx, "checkout", window, max)
	if err != nil {
		t.Fatalf("allow after window: %v", err)
	}
	if !res.Allowed {
		t.Fatal("expected request after window to be allowed")
	}
}

func TestLimiterDisabledWithoutClient(t *testing.T) {
	res, err := Limiter{}.Allow(context.Background(), "any", time.Second, 5)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !res.Allowed {
		t.Fatal("nil client must disable limiting")
	}
}
