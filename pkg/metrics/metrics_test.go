package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSearch("lexical", "ok", "miss", time.Millisecond)
		m.ObserveResults("lexical", 3)
		m.ObserveStrategy("semantic", time.Millisecond)
		m.ObserveCache(true)
		m.ObserveBuildStage("lexical", time.Second)
		m.ObserveBuild(nil)
		m.ObserveReload(errors.New("x"))
		m.SetIndexSize(10, 100)
	})
}

func TestObserve(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ObserveSearch("both", "ok", "hit", 2*time.Millisecond)
	m.ObserveSearch("both", "error", "miss", time.Millisecond)
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObserveBuild(nil)
	m.ObserveReload(errors.New("missing"))
	m.SetIndexSize(42, 900)
	m.ObserveStrategy("lexical", time.Millisecond)
	m.ObserveStrategy("semantic", 3*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("both", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("both", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMissesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexBuildsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexReloadsTotal.WithLabelValues("error")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.PagesIndexed.WithLabelValues("semantic")))
	assert.Equal(t, 900.0, testutil.ToFloat64(m.VocabularySize))
	assert.Equal(t, 2, testutil.CollectAndCount(m.StrategyLatency))
}
