// Package handler exposes search over HTTP: the query endpoint, result cache
// administration, index reload and the raw slide files.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/internal/textnorm"
	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/middleware"
)

type SearchExecutor interface {
	Execute(ctx context.Context, plan *parser.Plan) (*executor.SearchResult, error)
}

type Reloader interface {
	Reload() (*searcher.Snapshot, error)
}

type Tracker interface {
	Track(event any)
}

// Config wires a Handler. Cache, Collector, Reloader and Metrics are optional.
type Config struct {
	Executor   SearchExecutor
	Cache      *cache.QueryCache
	Collector  Tracker
	Reloader   Reloader
	Metrics    *metrics.Metrics
	Normalizer textnorm.Normalizer
	Limits     parser.Limits
	SlidesDir  string
}

type Handler struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config) *Handler {
	return &Handler{
		cfg:    cfg,
		logger: slog.Default().With("component", "search-handler"),
	}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("POST /api/v1/index/reload", h.Reload)
	if h.cfg.SlidesDir != "" {
		mux.Handle("GET /slides/", http.StripPrefix("/slides/", noListing(http.FileServer(http.Dir(h.cfg.SlidesDir)))))
	}
}

type searchResponse struct {
	*executor.SearchResult
	CacheHit bool `json:"cache_hit"`
}

// Search serves GET /api/v1/search?q=&mode=&top_k=. An empty query answers
// with empty lists for the requested strategies.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)
	q := r.URL.Query()

	plan, err := parser.Parse(q.Get("q"), q.Get("mode"), q.Get("top_k"), h.cfg.Normalizer, h.cfg.Limits)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var (
		result   *executor.SearchResult
		cacheHit bool
	)
	cacheStatus := "disabled"
	switch {
	case plan.Empty() || h.cfg.Cache == nil:
		result, err = h.cfg.Executor.Execute(ctx, plan)
	default:
		result, cacheHit, err = h.cfg.Cache.GetOrCompute(ctx, plan, func() (*executor.SearchResult, error) {
			return h.cfg.Executor.Execute(ctx, plan)
		})
		cacheStatus = "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
	}
	elapsed := time.Since(start)

	if err != nil {
		log.Error("search execution failed", "query", plan.RawQuery, "mode", plan.Mode, "error", err)
		h.cfg.Metrics.ObserveSearch(string(plan.Mode), "error", cacheStatus, elapsed)
		h.track(ctx, plan, nil, false, elapsed, err)
		h.writeError(w, r, err)
		return
	}

	resultType := "ok"
	if result.Total() == 0 {
		resultType = "zero"
	}
	h.cfg.Metrics.ObserveSearch(string(plan.Mode), resultType, cacheStatus, elapsed)
	log.Info("search completed",
		"query", plan.RawQuery,
		"mode", plan.Mode,
		"returned", result.Total(),
		"cache_hit", cacheHit,
		"latency_ms", elapsed.Milliseconds(),
	)
	h.track(ctx, plan, result, cacheHit, elapsed, nil)
	h.writeJSON(w, http.StatusOK, searchResponse{SearchResult: result, CacheHit: cacheHit})
}

func (h *Handler) track(ctx context.Context, plan *parser.Plan, result *executor.SearchResult, cacheHit bool, elapsed time.Duration, err error) {
	if h.cfg.Collector == nil {
		return
	}
	event := analytics.SearchEvent{
		Type:       analytics.EventCacheMiss,
		Query:      plan.RawQuery,
		Normalized: plan.Normalized,
		Mode:       string(plan.Mode),
		TopK:       plan.TopK,
		LatencyMs:  elapsed.Milliseconds(),
		CacheHit:   cacheHit,
		Timestamp:  time.Now().UTC(),
		RequestID:  middleware.GetRequestID(ctx),
	}
	switch {
	case err != nil:
		event.Type = analytics.EventError
		event.Error = err.Error()
	case result.Total() == 0:
		event.Type = analytics.EventZeroResult
	case cacheHit:
		event.Type = analytics.EventCacheHit
	}
	if result != nil {
		event.LexicalReturned = len(result.Lexical)
		event.SemanticReturned = len(result.Semantic)
		event.Returned = result.Total()
	}
	h.cfg.Collector.Track(event)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cfg.Cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Cache == nil {
		h.writeError(w, r, apperrors.New(apperrors.ErrInvalidInput, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}
	if err := h.cfg.Cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// Reload re-reads the index files and clears the result cache.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Reloader == nil {
		h.writeError(w, r, apperrors.New(apperrors.ErrInvalidInput, http.StatusNotImplemented, "reload is not available"))
		return
	}
	snap, err := h.cfg.Reloader.Reload()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.cfg.Cache != nil {
		if err := h.cfg.Cache.Invalidate(r.Context()); err != nil {
			h.logger.Warn("cache invalidation after reload failed", "error", err)
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "reloaded",
		"generation": snap.Generation,
		"pages":      snap.Corpus.Len(),
		"loaded_at":  snap.LoadedAt,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// writeError maps err to a status code. Internal errors are not echoed back.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	} else if status == http.StatusInternalServerError {
		message = "search failed"
	}
	h.writeJSON(w, status, map[string]string{
		"error":      message,
		"request_id": middleware.GetRequestID(r.Context()),
	})
}

// noListing hides directory indexes of the slides directory.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
