// Package consumer listens for index completion events on Kafka and makes a
// running searcher pick up the freshly committed files.
package consumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/kafka"
)

// Reloader swaps in a new index snapshot.
type Reloader interface {
	Reload() (*searcher.Snapshot, error)
}

// Invalidator drops cached results computed against an older snapshot.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// IndexConsumer wraps a Kafka consumer subscribed to the completion topic.
type IndexConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// New creates an IndexConsumer backed by the given Kafka consumer.
func New(kafkaConsumer *kafka.Consumer) *IndexConsumer {
	return &IndexConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "index-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (ic *IndexConsumer) Start(ctx context.Context) error {
	ic.logger.Info("index consumer starting")
	return ic.consumer.Start(ctx)
}

// HandleIndexComplete returns a MessageHandler that reloads the index and then
// clears the result cache. dataDir filters out events for other data
// directories; an empty dataDir accepts all. cache may be nil.
func HandleIndexComplete(index Reloader, cache Invalidator, dataDir string) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[indexer.IndexComplete](value)
		if err != nil {
			logger.Error("failed to decode index completion event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		if dataDir != "" && event.DataDir != "" && event.DataDir != dataDir {
			logger.Debug("ignoring build for another data directory", "build_id", event.BuildID, "data_dir", event.DataDir)
			return nil
		}

		snap, err := index.Reload()
		if err != nil {
			return fmt.Errorf("reloading index for build %s: %w", event.BuildID, err)
		}
		if cache != nil {
			if err := cache.Invalidate(ctx); err != nil {
				logger.Warn("failed to invalidate result cache", "build_id", event.BuildID, "error", err)
			}
		}
		logger.Info("index reloaded",
			"build_id", event.BuildID,
			"generation", snap.Generation,
			"pages", event.Pages,
		)
		return nil
	}
}
