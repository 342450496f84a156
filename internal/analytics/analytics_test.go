package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPublisher struct {
	mu     sync.Mutex
	events []kafka.Event
}

func (p *memPublisher) Publish(_ context.Context, e kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *memPublisher) PublishBatch(ctx context.Context, events []kafka.Event) error {
	for _, e := range events {
		_ = p.Publish(ctx, e)
	}
	return nil
}

func (p *memPublisher) Close() error { return nil }

func (p *memPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestCollectorFlushesOnClose(t *testing.T) {
	pub := &memPublisher{}
	c := NewCollector(pub, 16)
	c.Start(context.Background())
	for i := 0; i < 5; i++ {
		c.Track(SearchEvent{Type: EventSearch, Query: "cat"})
	}
	c.Close()
	assert.Equal(t, 5, pub.count())
}

func TestCollectorFlushesOnCancel(t *testing.T) {
	pub := &memPublisher{}
	c := NewCollector(pub, 16)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	c.Track(SearchEvent{Type: EventSearch})
	c.Track(SearchEvent{Type: EventSearch})
	cancel()
	<-c.done
	assert.Equal(t, 2, pub.count())
}

func TestCollectorDropsWhenFull(t *testing.T) {
	c := NewCollector(&memPublisher{}, 1)
	c.Track(SearchEvent{})
	c.Track(SearchEvent{})
	assert.Len(t, c.eventCh, 1)
}

func encode(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestAggregatorStats(t *testing.T) {
	agg := NewAggregator()
	handle := HandleEvent(agg)
	ctx := context.Background()
	now := time.Now()

	events := []SearchEvent{
		{Type: EventCacheMiss, Query: "Cat", Normalized: "cat", Mode: "both", Returned: 10, LatencyMs: 10, Timestamp: now},
		{Type: EventCacheHit, Query: "cat!", Normalized: "cat", Mode: "both", Returned: 10, LatencyMs: 2, CacheHit: true, Timestamp: now},
		{Type: EventZeroResult, Query: "?!", Mode: "lexical", Returned: 0, LatencyMs: 1, Timestamp: now},
		{Type: EventError, Query: "dog", Normalized: "dog", Mode: "semantic", Error: "encoder unavailable", LatencyMs: 30, Timestamp: now},
	}
	for _, e := range events {
		require.NoError(t, handle(ctx, nil, encode(t, e)))
	}
	require.NoError(t, handle(ctx, nil, encode(t, IndexEvent{Type: EventIndexBuild, Pages: 42})))
	require.NoError(t, handle(ctx, nil, []byte("not json")))

	stats := agg.Stats()
	assert.EqualValues(t, 4, stats.TotalSearches)
	assert.EqualValues(t, 1, stats.CacheHits)
	assert.EqualValues(t, 2, stats.CacheMisses)
	assert.EqualValues(t, 1, stats.ErrorCount)
	assert.EqualValues(t, 1, stats.ZeroResultCount)
	assert.EqualValues(t, 1, stats.TotalBuilds)
	assert.EqualValues(t, 42, stats.LastBuildPages)
	assert.Equal(t, map[string]int64{"both": 2, "lexical": 1, "semantic": 1}, stats.SearchesByMode)
	assert.Equal(t, QueryCount{Query: "cat", Count: 2}, stats.TopQueries[0])
	assert.Equal(t, []QueryCount{{Query: "?!", Count: 1}}, stats.ZeroResultQueries)
	assert.Equal(t, 10.75, stats.AvgLatencyMs)
	assert.EqualValues(t, 30, stats.P99LatencyMs)
}

func TestStatsHandler(t *testing.T) {
	agg := NewAggregator()
	agg.RecordSearch(SearchEvent{Type: EventSearch, Query: "cat", Mode: "both", Returned: 3})

	mux := http.NewServeMux()
	NewHandler(agg, nil).Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got AggregatedStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.EqualValues(t, 1, got.TotalSearches)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/snapshot", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fixedSnapshots struct {
	stats *AggregatedStats
	err   error
}

func (f fixedSnapshots) LatestSnapshot(context.Context) (*AggregatedStats, error) {
	return f.stats, f.err
}

func TestSnapshotHandler(t *testing.T) {
	serve := func(src SnapshotSource) *httptest.ResponseRecorder {
		mux := http.NewServeMux()
		NewHandler(NewAggregator(), src).Register(mux)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/snapshot", nil))
		return rec
	}

	rec := serve(fixedSnapshots{stats: &AggregatedStats{TotalSearches: 7}})
	require.Equal(t, http.StatusOK, rec.Code)
	var got AggregatedStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.EqualValues(t, 7, got.TotalSearches)

	assert.Equal(t, http.StatusNotFound, serve(fixedSnapshots{}).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(fixedSnapshots{err: assert.AnError}).Code)
}
