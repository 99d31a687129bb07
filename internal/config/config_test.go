package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("addr = %s", cfg.HTTPAddr)
	}
	if cfg.CashAsset != "SEK" {
		t.Fatalf("cash asset = %s", cfg.CashAsset)
	}
	if cfg.RecentTradesLimit != 10 {
		t.Fatalf("recent trades limit = %d", cfg.RecentTradesLimit)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("CASH_ASSET", "USD")
	t.Setenv("CACHE_TTL_SECONDS", "30")
	t.Setenv("RECENT_TRADES_LIMIT", "25")

	cfg := LoadFromEnv("testdata/absent.env")
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("addr = %s", cfg.HTTPAddr)
	}
	if cfg.CashAsset != "USD" {
		t.Fatalf("cash asset = %s", cfg.CashAsset)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Fatalf("ttl = %s", cfg.CacheTTL)
	}
	if cfg.RecentTradesLimit != 25 {
		t.Fatalf("recent trades limit = %d", cfg.RecentTradesLimit)
	}
}

func TestBadEnvValuesKeepDefaults(t *testing.T) {
	t.Setenv("CACHE_TTL_SECONDS", "not-a-number")
	t.Setenv("RECENT_TRADES_LIMIT", "-3")

	cfg := LoadFromEnv("testdata/absent.env")
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("ttl = %s, want default", cfg.CacheTTL)
	}
	if cfg.RecentTradesLimit != 10 {
		t.Fatalf("recent trades limit = %d, want default", cfg.RecentTradesLimit)
	}
}

func TestRateLimitEnvRejectsNegative(t *testing.T) {
	// A negative interval would silently disable the limiter; keep the
	// default instead. Zero stays a valid explicit off switch.
	t.Setenv("RATE_LIMIT_MS", "-100")
	cfg := LoadFromEnv("testdata/absent.env")
	if cfg.RateLimit != 50*time.Millisecond {
		t.Fatalf("rate limit = %s, want default", cfg.RateLimit)
	}

	t.Setenv("RATE_LIMIT_MS", "0")
	cfg = LoadFromEnv("testdata/absent.env")
	if cfg.RateLimit != 0 {
		t.Fatalf("rate limit = %s, want disabled", cfg.RateLimit)
	}
}
