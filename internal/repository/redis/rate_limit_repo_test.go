package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/DRSN-tech/beauty-backend/internal/cfg"
	"github.com/DRSN-tech/beauty-backend/pkg/clients"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
	"github.com/google/uuid"
)

func TestBuildRateLimitKey(t *testing.T) {
	start := time.Unix(1700000040, 0)
	if got := buildRateLimitKey("10.0.0.1", start); got != "beauty:ratelimit:10.0.0.1:1700000040" {
		t.Errorf("key = %q", got)
	}
}

// TestRateLimitRepo требует живой Redis (REDIS_TEST_ADDR).
func TestRateLimitRepo(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR is not set")
	}

	c := &cfg.RedisCfg{Addr: addr, DialTimeout: time.Second, Timeout: time.Second, RateLimit: 2, RateLimitWindow: time.Minute}
	client := clients.NewRedisClient(c)
	defer client.Close()

	repo := NewRateLimitRepo(client, c, logger.Nop{})
	fixed := time.Now()
	repo.now = func() time.Time { return fixed }

	key := "test-" + uuid.NewString()
	for i, want := range []bool{true, true, false} {
		d, err := repo.Allow(context.Background(), key)
		if err != nil {
			t.Fatalf("Allow #%d: %v", i, err)
		}
		if d.Allowed != want {
			t.Errorf("Allow #%d = %v, want %v", i, d.Allowed, want)
		}
	}
}
