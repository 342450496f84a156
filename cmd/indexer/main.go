// Command indexer builds the lexical and semantic indices from the configured
// corpus source and writes them to the data directory.
//
// With -interval it keeps running and rebuilds on that schedule. When Kafka is
// enabled each completed build is announced on the index-complete topic so
// running searchers reload, and recorded on the analytics topic.
//
// Usage:
//
//	go run ./cmd/indexer [-config configs/development.yaml] [-interval 1h]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/app"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	interval := flag.Duration("interval", 0, "rebuild on this interval instead of exiting after one build")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup("indexer", cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexer", "source", cfg.Corpus.Source, "data_dir", cfg.Indexer.DataDir, "encoder", cfg.Encoder.Provider)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled && *interval > 0 {
		m = metrics.New()
		metrics.Serve(ctx, cfg.Metrics.Port)
	}

	var completions, events kafka.Publisher
	if cfg.Kafka.Enabled {
		completions = kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
		defer completions.Close()
		events = kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer events.Close()
	}

	source, closeSource, err := app.CorpusSource(ctx, cfg)
	if err != nil {
		slog.Error("failed to open corpus source", "error", err)
		os.Exit(1)
	}
	defer closeSource()

	engine, err := app.NewEngine(cfg, source, completions, m)
	if err != nil {
		slog.Error("failed to create indexer", "error", err)
		os.Exit(1)
	}

	if err := runBuild(ctx, engine, events); err != nil && *interval <= 0 {
		os.Exit(1)
	}
	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	slog.Info("rebuild loop started", "interval", *interval)
	for {
		select {
		case <-ticker.C:
			_ = runBuild(ctx, engine, events)
		case <-ctx.Done():
			slog.Info("indexer stopped")
			return
		}
	}
}

func runBuild(ctx context.Context, engine *indexer.Engine, events kafka.Publisher) error {
	start := time.Now()
	report, err := engine.Build(ctx)
	if err != nil {
		slog.Error("index build failed", "error", err)
		return err
	}
	if events != nil {
		event := analytics.IndexEvent{
			Type:       analytics.EventIndexBuild,
			BuildID:    report.BuildID,
			Pages:      report.Pages,
			Vocabulary: report.Vocabulary,
			LatencyMs:  time.Since(start).Milliseconds(),
			Timestamp:  report.CompletedAt,
		}
		if err := events.Publish(ctx, kafka.Event{Key: "analytics", Value: event}); err != nil {
			slog.Warn("failed to publish build analytics", "error", err)
		}
	}
	return nil
}
