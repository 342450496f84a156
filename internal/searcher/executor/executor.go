package executor

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/tracing"
)

// SearchResult carries one ranked list per requested strategy. A nil list
// means the strategy was not requested; an empty list means it found nothing.
type SearchResult struct {
	Query    string          `json:"query"`
	Mode     parser.Mode     `json:"mode"`
	TopK     int             `json:"top_k"`
	Lexical  []ranker.Result `json:"tfidf_results"`
	Semantic []ranker.Result `json:"emb_results"`
	TookMS   int64           `json:"took_ms"`
}

// Total is the number of results across both lists.
func (r *SearchResult) Total() int {
	return len(r.Lexical) + len(r.Semantic)
}

// Source hands out the snapshot a query runs against.
type Source interface {
	Get() (*searcher.Snapshot, error)
}

type Executor struct {
	source  Source
	metrics *metrics.Metrics
}

func New(source Source, m *metrics.Metrics) *Executor {
	return &Executor{
		source:  source,
		metrics: m,
	}
}

// Execute runs plan against the current snapshot. In both mode the two
// retrievers run concurrently and either failure fails the whole query.
func (e *Executor) Execute(ctx context.Context, plan *parser.Plan) (*SearchResult, error) {
	start := time.Now()
	result := &SearchResult{Query: plan.RawQuery, Mode: plan.Mode, TopK: plan.TopK}
	if plan.Mode.Lexical() {
		result.Lexical = []ranker.Result{}
	}
	if plan.Mode.Semantic() {
		result.Semantic = []ranker.Result{}
	}
	if plan.Empty() {
		return result, nil
	}

	snap, err := e.source.Get()
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).With("component", "query-executor")
	ctx, span := tracing.Start(ctx, "search", logger.RequestID(ctx))
	defer func() {
		span.End()
		span.Log(log)
	}()

	g, gctx := errgroup.WithContext(ctx)
	if plan.Mode.Lexical() {
		g.Go(func() error {
			_, span := tracing.StartChild(gctx, "lexical")
			defer span.End()
			began := time.Now()
			res, err := snap.Lexical.Search(plan.RawQuery, plan.TopK)
			e.metrics.ObserveStrategy(string(parser.ModeLexical), time.Since(began))
			if err != nil {
				return fmt.Errorf("lexical search: %w", err)
			}
			result.Lexical = res
			return nil
		})
	}
	if plan.Mode.Semantic() {
		g.Go(func() error {
			sctx, span := tracing.StartChild(gctx, "semantic")
			defer span.End()
			began := time.Now()
			res, err := snap.Semantic.Search(sctx, plan.RawQuery, plan.TopK)
			e.metrics.ObserveStrategy(string(parser.ModeSemantic), time.Since(began))
			if err != nil {
				return fmt.Errorf("semantic search: %w", err)
			}
			result.Semantic = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.TookMS = time.Since(start).Milliseconds()
	if plan.Mode.Lexical() {
		e.metrics.ObserveResults(string(parser.ModeLexical), len(result.Lexical))
	}
	if plan.Mode.Semantic() {
		e.metrics.ObserveResults(string(parser.ModeSemantic), len(result.Semantic))
	}
	span.SetAttr("generation", snap.Generation)
	log.Info("query executed",
		"query", plan.Normalized,
		"mode", plan.Mode,
		"top_k", plan.TopK,
		"lexical_results", len(result.Lexical),
		"semantic_results", len(result.Semantic),
		"generation", snap.Generation,
		"duration", time.Since(start),
	)
	return result, nil
}
