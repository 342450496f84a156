// Command searcher serves page search over HTTP.
//
// It lazily loads the indices written by the indexer, answers
// GET /api/v1/search?q=&mode=&top_k=, serves the raw slides under /slides/,
// caches results in Redis when enabled, and reloads itself when the indexer
// announces a new build on Kafka.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/app"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/ratelimit"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup("searcher", cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "data_dir", cfg.Indexer.DataDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		metrics.Serve(ctx, cfg.Metrics.Port)
	}

	idx, err := app.NewIndex(cfg, m)
	if err != nil {
		slog.Error("failed to create search index", "error", err)
		os.Exit(1)
	}
	if _, err := idx.Get(); err != nil {
		slog.Warn("index not loaded yet, serving 503 until a build completes", "error", err)
	}

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 0)
		collector.Start(ctx)
		slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

		startReloadListener(ctx, cfg, idx, queryCache)
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		snap, err := idx.Get()
		if err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d pages, generation %d", snap.Corpus.Len(), snap.Generation),
		}
	})
	if redisClient != nil {
		checker.Register("redis", health.PingCheck(redisClient.Ping, true))
	}

	hcfg := handler.Config{
		Executor:   executor.New(idx, m),
		Cache:      queryCache,
		Reloader:   idx,
		Metrics:    m,
		Normalizer: app.Normalizer(cfg.Normalize),
		Limits:     app.Limits(cfg.Search),
		SlidesDir:  cfg.Corpus.SlidesDir,
	}
	if collector != nil {
		hcfg.Collector = collector
	}
	h := handler.New(hcfg)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var limiter *ratelimit.Limiter
	if cfg.Server.RateLimit > 0 {
		limiter = ratelimit.New(cfg.Server.RateLimit, time.Minute)
		go limiter.StartPruning(ctx, 5*time.Minute)
	}

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins)),
			middleware.Metrics(m),
			middleware.RateLimit(limiter),
			middleware.Timeout(cfg.Server.WriteTimeout),
		),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	if collector != nil {
		collector.Close()
	}
	slog.Info("search service stopped")
}

// startReloadListener subscribes with a per-instance group so every replica
// reloads on every build.
func startReloadListener(ctx context.Context, cfg *config.Config, idx *searcher.Index, queryCache *cache.QueryCache) {
	var invalidator consumer.Invalidator
	if queryCache != nil {
		invalidator = queryCache
	}
	groupID := fmt.Sprintf("%s-searcher-%s", cfg.Kafka.ConsumerGroup, uuid.NewString()[:8])
	kc := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete, groupID,
		consumer.HandleIndexComplete(idx, invalidator, cfg.Indexer.DataDir))
	go func() {
		defer kc.Close()
		if err := consumer.New(kc).Start(ctx); err != nil {
			slog.Error("index consumer error", "error", err)
		}
	}()
	slog.Info("listening for index builds", "topic", cfg.Kafka.Topics.IndexComplete, "group", groupID)
}
