package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/wonny/jreit-finder/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(context.Background(), &config.Config{Redis: config.RedisConfig{Enabled: false}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
	if err := client.Ping(context.Background()); !errors.Is(err, ErrDisabled) {
		t.Errorf("Ping() error = %v, want ErrDisabled", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}

	if err := cache.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Errorf("Set() error = %v", err)
	}
}

func TestCache_GetOrSetDisabledCallsLoader(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")

	type row struct {
		Code string
		NAV  float64
	}

	calls := 0
	var dest []row
	err := cache.GetOrSet(context.Background(), "rows", &dest, time.Minute, func() (interface{}, error) {
		calls++
		return []row{{Code: "8951", NAV: 1.1}}, nil
	})
	if err != nil {
		t.Fatalf("GetOrSet() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected loader to be called once, got %d", calls)
	}
	if len(dest) != 1 || dest[0].Code != "8951" {
		t.Errorf("Expected dest to be populated, got %+v", dest)
	}
}

func TestCache_GetOrSetPropagatesLoaderError(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	loadErr := errors.New("scrape failed")

	var dest []string
	err := cache.GetOrSet(context.Background(), "rows", &dest, time.Minute, func() (interface{}, error) {
		return nil, loadErr
	})
	if !errors.Is(err, loadErr) {
		t.Errorf("Expected loader error, got %v", err)
	}
}

func TestCache_RoundTripIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}

	cache := NewCache(NewFromRedis(goredis.NewClient(&goredis.Options{Addr: addr})), "jreit-test")
	ctx := context.Background()
	defer cache.Delete(ctx, "rt")

	if err := cache.Set(ctx, "rt", map[string]int{"n": 3}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got map[string]int
	found, err := cache.Get(ctx, "rt", &got)
	if err != nil || !found {
		t.Fatalf("Get() = %v, %v", found, err)
	}
	if got["n"] != 3 {
		t.Errorf("Expected n=3, got %v", got)
	}
}

func TestEntitiesKey(t *testing.T) {
	if got := EntitiesKey("japan-reit"); got != "entities:japan-reit" {
		t.Errorf("EntitiesKey() = %q", got)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(Disabled(), "jreit-test")

	for i := 0; i < 10; i++ {
		allowed, remaining, err := limiter.Allow(context.Background(), RefreshRateLimit)
		if err != nil || !allowed {
			t.Fatalf("Allow() = %v, %v; disabled limiter must allow", allowed, err)
		}
		if remaining != RefreshRateLimit.Limit {
			t.Errorf("remaining = %d, want %d", remaining, RefreshRateLimit.Limit)
		}
	}

	var nilLimiter *RateLimiter
	if allowed, _, _ := nilLimiter.Allow(context.Background(), RefreshRateLimit); !allowed {
		t.Error("nil limiter must allow")
	}
}

func TestRateLimiter_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}

	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	limiter := NewRateLimiter(NewFromRedis(rdb), "jreit-test")
	cfg := RateLimitConfig{Key: fmt.Sprintf("it-%d", time.Now().UnixNano()), Limit: 3, Window: time.Minute}
	ctx := context.Background()
	defer rdb.Del(ctx, "jreit-test:ratelimit:"+cfg.Key)

	// burst within one millisecond still counts every request
	for i := 0; i < cfg.Limit; i++ {
		allowed, remaining, err := limiter.Allow(ctx, cfg)
		if err != nil || !allowed {
			t.Fatalf("request %d: Allow() = %v, %v", i, allowed, err)
		}
		if remaining != cfg.Limit-i-1 {
			t.Errorf("request %d: remaining = %d", i, remaining)
		}
	}

	allowed, _, err := limiter.Allow(ctx, cfg)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if allowed {
		t.Error("request beyond the limit was allowed")
	}
}
