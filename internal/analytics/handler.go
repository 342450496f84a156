package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/logger"
)

// SnapshotSource returns the most recently persisted aggregate, or nil when
// none has been saved.
type SnapshotSource interface {
	LatestSnapshot(ctx context.Context) (*AggregatedStats, error)
}

// Handler serves the live aggregate and, when a store is configured, the
// last persisted snapshot.
type Handler struct {
	aggregator *Aggregator
	snapshots  SnapshotSource
}

// NewHandler returns a Handler. snapshots may be nil.
func NewHandler(aggregator *Aggregator, snapshots SnapshotSource) *Handler {
	return &Handler{aggregator: aggregator, snapshots: snapshots}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/analytics", h.Stats)
	mux.HandleFunc("GET /api/v1/analytics/snapshot", h.Snapshot)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, h.aggregator.Stats())
}

func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		writeJSON(r.Context(), w, http.StatusNotFound, map[string]string{"error": "snapshots are not enabled"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	stats, err := h.snapshots.LatestSnapshot(ctx)
	if err != nil {
		logger.FromContext(r.Context()).Error("loading analytics snapshot", "error", err)
		writeJSON(r.Context(), w, http.StatusInternalServerError, map[string]string{"error": "snapshot unavailable"})
		return
	}
	if stats == nil {
		writeJSON(r.Context(), w, http.StatusNotFound, map[string]string{"error": "no snapshot saved yet"})
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, stats)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(ctx).Error("failed to write analytics response", "error", err)
	}
}
