package handler

import (
	"net/http"

	"github.com/scamtrace/scamtrace/internal/metrics"
)

// StatsHandler exposes in-memory operational counters.
type StatsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(snapshotter metrics.Snapshotter) *StatsHandler {
	return &StatsHandler{snapshotter: snapshotter}
}

// Stats returns current counters as JSON. Routed behind the service-key
// gate along with the other machine endpoints.
//
// GET /stats
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, h.snapshotter.Snapshot())
}
