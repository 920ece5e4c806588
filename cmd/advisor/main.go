// cmd/advisor/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"funding-advisor/internal/advisor"
	"funding-advisor/internal/common/config"
	"funding-advisor/internal/common/database"
	"funding-advisor/internal/common/httpclient"
	"funding-advisor/internal/common/logger"
	"funding-advisor/internal/discovery"
	"funding-advisor/internal/discovery/ai"
	"funding-advisor/internal/discovery/cache"
	"funding-advisor/internal/discovery/fetcher"
	"funding-advisor/internal/discovery/ratelimit"
	"funding-advisor/internal/enrichment"
	"funding-advisor/internal/matching"
	"funding-advisor/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting funding advisor...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Discovery pipeline ---
	store := cache.NewStore(rdb, cfg.Discovery.CachePrefix, log)
	limiter := ratelimit.New(cfg.Ceilings(), cfg.Discovery.DefaultCallsPerMinute)
	client := httpclient.NewClient(cfg.Discovery.FetchTimeout())

	var fetchers []fetcher.Fetcher

	type scraperInit struct {
		name string
		make func(config.SourceConfig, time.Duration, *httpclient.Client, logger.Logger) (*fetcher.Scraper, error)
	}
	for _, init := range []scraperInit{
		{"business_finland", fetcher.NewBusinessFinland},
		{"ely", fetcher.NewELY},
		{"finnvera", fetcher.NewFinnvera},
	} {
		srcCfg, ok := cfg.Sources[init.name]
		if !ok || !srcCfg.Enabled {
			zapLog.Info("Source disabled", zap.String("source", init.name))
			continue
		}
		s, err := init.make(srcCfg, cfg.Discovery.CacheTTL(), client, log)
		if err != nil {
			zapLog.Fatal("failed to create source fetcher", zap.String("source", init.name), zap.Error(err))
		}
		fetchers = append(fetchers, s)
	}

	if cfg.AI.Enabled {
		aiFetcher, err := ai.New(cfg.AI, cfg.Discovery.AICacheTTL(), log)
		if err != nil {
			zapLog.Fatal("failed to create AI discovery fetcher", zap.Error(err))
		}
		fetchers = append(fetchers, aiFetcher)
		zapLog.Info("AI discovery enabled", zap.String("model", cfg.AI.Model))
	}

	if len(fetchers) == 0 {
		zapLog.Fatal("no funding sources enabled")
	}

	orchestrator := discovery.NewOrchestrator(fetchers, store, limiter, cfg.Discovery, log)
	engine := matching.NewEngine(cfg.Matching, log)
	enricher := enrichment.NewClient(cfg.Enrichment, log)
	service := advisor.NewService(enricher, orchestrator, engine, store, log)

	srv := server.New(cfg.Server, service, log)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		zapLog.Fatal("server failed", zap.Error(err))
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received, draining requests...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("shutdown did not complete cleanly", zap.Error(err))
	}

	zapLog.Info("Funding advisor stopped gracefully")
}
