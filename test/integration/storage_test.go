// Package integration exercises the storage-backed components against real
// PostgreSQL and Redis. Each test skips itself when its backend is not
// reachable.
//
// Run with:
//
//	TEST_POSTGRES_HOST=localhost TEST_REDIS_ADDR=localhost:6379 go test -v ./test/integration/...
package integration

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/encoder"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/lexical"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/redis"
)

func skipIfNoPostgres(t *testing.T) *postgres.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, config.PostgresConfig{
		Host:            envOrDefault("TEST_POSTGRES_HOST", "localhost"),
		Port:            envOrDefaultInt("TEST_POSTGRES_PORT", 5432),
		Database:        envOrDefault("TEST_POSTGRES_DB", "pagesearch_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "pagesearch"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		t.Skipf("skipping integration test: postgres unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func skipIfNoRedis(t *testing.T) *pkgredis.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	client, err := pkgredis.NewClient(ctx, config.RedisConfig{
		Enabled:  true,
		Addr:     envOrDefault("TEST_REDIS_ADDR", "localhost:6379"),
		DB:       envOrDefaultInt("TEST_REDIS_DB", 15),
		PoolSize: 4,
	})
	if err != nil {
		t.Skipf("skipping integration test: redis unavailable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestPostgresCorpusFeedsBuild(t *testing.T) {
	db := skipIfNoPostgres(t)
	ctx := context.Background()
	table := "pages_" + uuid.NewString()[:8]
	t.Cleanup(func() { _, _ = db.DB.Exec("DROP TABLE IF EXISTS " + table) })

	store := corpus.NewPostgresStore(db, table)
	require.NoError(t, store.EnsureSchema(ctx))

	entries := []corpus.Entry{
		{DocID: "ir.pdf", PageNumber: 1, Text: "Inverted index and posting lists"},
		{DocID: "ir.pdf", PageNumber: 2, Text: "TF-IDF weighting of terms"},
		{DocID: "ml.pdf", PageNumber: 1, Text: "Gradient descent for linear models"},
	}
	require.NoError(t, store.Replace(ctx, entries))
	require.NoError(t, store.Replace(ctx, entries), "replace is idempotent")

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, loaded)

	engine, err := indexer.NewEngine(store, indexer.Options{
		DataDir:    t.TempDir(),
		Normalizer: textnorm.Default(),
		Lexical:    lexical.DefaultParams(),
		Encoder:    encoder.NewHash(32),
	})
	require.NoError(t, err)
	report, err := engine.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Pages)
}

func TestAnalyticsSnapshotRoundTrip(t *testing.T) {
	db := skipIfNoPostgres(t)
	ctx := context.Background()
	store := aggregator.NewStore(db)
	require.NoError(t, store.EnsureSchema(ctx))

	agg := analytics.NewAggregator()
	agg.RecordSearch(analytics.SearchEvent{
		Type:      analytics.EventSearch,
		Query:     "tf idf " + uuid.NewString(),
		Mode:      "both",
		TopK:      5,
		Returned:  4,
		LatencyMs: 12,
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, store.SaveSnapshot(ctx, agg.Stats()))

	latest, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, agg.Stats().TopQueries, latest.TopQueries)
}

func TestRedisQueryCache(t *testing.T) {
	client := skipIfNoRedis(t)
	ctx := context.Background()
	qc := cache.New(client, time.Minute, nil)
	t.Cleanup(func() { _ = qc.Invalidate(ctx) })

	plan, err := parser.Parse("Cosine Similarity", "lexical", "3", textnorm.Default(), parser.Limits{DefaultTopK: 5})
	require.NoError(t, err)

	calls := 0
	compute := func() (*executor.SearchResult, error) {
		calls++
		return &executor.SearchResult{
			Query: plan.RawQuery,
			Mode:  plan.Mode,
			TopK:  plan.TopK,
			Lexical: []ranker.Result{
				{Rank: 1, Score: 0.5, DocID: "ir.pdf", PageNumber: 3, Text: "cosine similarity"},
			},
		}, nil
	}

	_, hit, err := qc.GetOrCompute(ctx, plan, compute)
	require.NoError(t, err)
	assert.False(t, hit)

	got, hit, err := qc.GetOrCompute(ctx, plan, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, calls)
	require.Len(t, got.Lexical, 1)
	assert.Nil(t, got.Semantic)

	require.NoError(t, qc.Invalidate(ctx))
	_, hit, err = qc.GetOrCompute(ctx, plan, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, calls)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
