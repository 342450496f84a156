// Package app turns a loaded config into the components the commands run:
// the normalizer, the corpus source, the build engine and the search index.
package app

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/encoder"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/lexical"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/semantic"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/postgres"
)

func Normalizer(cfg config.NormalizeConfig) textnorm.Normalizer {
	return textnorm.Normalizer{
		Lowercase:         cfg.Lowercase,
		RemovePunctuation: cfg.RemovePunctuation,
		RemoveNumbers:     cfg.RemoveNumbers,
	}
}

func LexicalParams(cfg config.LexicalConfig) lexical.Params {
	return lexical.Params{
		MaxFeatures: cfg.MaxFeatures,
		NGramMin:    cfg.NGramMin,
		NGramMax:    cfg.NGramMax,
		MinDF:       cfg.MinDF,
		MaxDF:       cfg.MaxDF,
	}
}

func Ranking(cfg config.SearchConfig) ranker.Options {
	return ranker.Options{TopK: cfg.DefaultTopK, MinScore: cfg.MinScore}
}

func Limits(cfg config.SearchConfig) parser.Limits {
	return parser.Limits{DefaultTopK: cfg.DefaultTopK, MaxTopK: cfg.MaxTopK}
}

// CorpusSource opens the configured corpus source. The returned close
// function releases the database pool when the source is PostgreSQL.
func CorpusSource(ctx context.Context, cfg *config.Config) (corpus.Source, func() error, error) {
	switch cfg.Corpus.Source {
	case "csv":
		return corpus.NewCSVSource(cfg.Corpus.CSVPath), func() error { return nil }, nil
	case "postgres":
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return corpus.NewPostgresStore(client, cfg.Corpus.Table), client.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown corpus source %q", cfg.Corpus.Source)
}

// NewEngine builds an indexer over source. publisher may be nil.
func NewEngine(cfg *config.Config, source corpus.Source, publisher kafka.Publisher, m *metrics.Metrics) (*indexer.Engine, error) {
	enc, err := encoder.New(cfg.Encoder)
	if err != nil {
		return nil, err
	}
	return indexer.NewEngine(source, indexer.Options{
		DataDir:    cfg.Indexer.DataDir,
		Normalizer: Normalizer(cfg.Normalize),
		Lexical:    LexicalParams(cfg.Lexical),
		Semantic: semantic.BuildOptions{
			BatchSize: cfg.Semantic.BatchSize,
			Workers:   cfg.Semantic.Workers,
		},
		Encoder:   enc,
		Publisher: publisher,
		Metrics:   m,
	})
}

// NewIndex returns the lazily loaded search index. Query embeddings are
// cached in memory.
func NewIndex(cfg *config.Config, m *metrics.Metrics) (*searcher.Index, error) {
	enc, err := encoder.New(cfg.Encoder)
	if err != nil {
		return nil, err
	}
	return searcher.NewIndex(searcher.Options{
		DataDir:    cfg.Indexer.DataDir,
		Normalizer: Normalizer(cfg.Normalize),
		Encoder:    encoder.NewCached(enc, cfg.Encoder.CacheSize),
		Ranking:    Ranking(cfg.Search),
		Metrics:    m,
	}), nil
}
