package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	// DatabaseURL is the Postgres DSN; when empty the server runs on the
	// in-memory repository.
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// CashAsset is the currency code stamped on cash ledger entries.
	CashAsset         string
	RecentTradesLimit int
	RateLimit         time.Duration
}

func Default() Config {
	return Config{
		HTTPAddr:          ":8080",
		RedisAddr:         "",
		CacheTTL:          5 * time.Minute,
		CashAsset:         "SEK",
		RecentTradesLimit: 10,
		RateLimit:         50 * time.Millisecond,
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and the
// environment. Priority: ENV > .env > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = n
		}
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CacheTTL = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("CASH_ASSET"); v != "" {
		cfg.CashAsset = v
	}
	if v := os.Getenv("RECENT_TRADES_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RecentTradesLimit = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RateLimit = time.Duration(n) * time.Millisecond
		}
	}
	return cfg
}
