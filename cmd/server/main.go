package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/nilzex/exchange/internal/adapter/cache"
	"github.com/nilzex/exchange/internal/adapter/in_memory"
	"github.com/nilzex/exchange/internal/adapter/pg"
	"github.com/nilzex/exchange/internal/analytics"
	httpapi "github.com/nilzex/exchange/internal/api/http"
	"github.com/nilzex/exchange/internal/api/ws"
	"github.com/nilzex/exchange/internal/config"
	"github.com/nilzex/exchange/internal/core"
	"github.com/nilzex/exchange/internal/logging"
	"github.com/nilzex/exchange/internal/port"
)

func main() {
	cfg := config.LoadFromEnv("")

	logger, err := logging.NewLogger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	var repo port.Repository
	if cfg.DatabaseURL != "" {
		pgRepo, err := pg.NewPgRepo(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("connect postgres", zap.Error(err))
		}
		defer pgRepo.Close()
		repo = pgRepo
		logger.Info("using postgres repository")
	} else {
		repo = in_memory.NewMemoryRepo()
		logger.Warn("no DATABASE_URL set, using in-memory repository")
	}

	var bookCache port.Cache
	if cfg.RedisAddr != "" {
		bookCache = cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		logger.Info("using redis book cache", zap.String("addr", cfg.RedisAddr))
	} else {
		bookCache = in_memory.NewCache()
	}

	feed := ws.NewFeed(logger)

	engine := core.NewEngine(repo, bookCache, feed, logger, core.Config{
		CashAsset:         cfg.CashAsset,
		RecentTradesLimit: cfg.RecentTradesLimit,
	})
	analyzer := analytics.NewAnalyzer(repo)

	server := httpapi.NewHTTPServer(engine, analyzer, repo, feed, logger)
	server.RateLimit = cfg.RateLimit

	logger.Info("starting HTTP server", zap.String("addr", cfg.HTTPAddr))
	if err := server.Run(cfg.HTTPAddr); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}
}
