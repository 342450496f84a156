// Command analytics aggregates search analytics.
//
// It consumes the events published by the searcher and indexer, keeps
// running totals (searches per mode, cache hit rate, latency percentiles, top
// and zero-result queries) and serves them at GET /api/v1/analytics. With
// -snapshot the aggregate is also saved to PostgreSQL on that interval and
// the latest saved copy is served at GET /api/v1/analytics/snapshot.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml] [-snapshot 5m]
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

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	snapshot := flag.Duration("snapshot", 0, "save the aggregate to PostgreSQL on this interval (0 disables)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup("analytics", cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agg := analytics.NewAggregator()
	kc := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, "", analytics.HandleEvent(agg))
	defer kc.Close()
	go func() {
		if err := kc.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	slog.Info("analytics consumer started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

	checker := health.NewChecker()
	checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp, Message: "consumer active"}
	})

	var snapshots analytics.SnapshotSource
	if *snapshot > 0 {
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store := aggregator.NewStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare snapshot table", "error", err)
			os.Exit(1)
		}
		store.StartPeriodicSave(ctx, agg, *snapshot)
		snapshots = store
		checker.Register("postgres", health.PingCheck(db.Ping, false))
	}

	mux := http.NewServeMux()
	analytics.NewHandler(agg, snapshots).Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      middleware.RequestID(mux),
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

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("analytics service stopped")
}
