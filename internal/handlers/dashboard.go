package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/logging"
)

// DashboardHandler serves the channel owner's aggregate statistics.
type DashboardHandler struct {
	Composer ViewComposer
	Sessions SessionManager
}

// Stats handles GET /api/v1/dashboard/stats.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	actorID, ok := requireActor(ctx, w, r, h.Sessions)
	if !ok {
		return
	}
	ctx = logging.WithActorID(ctx, actorID)

	stats, err := h.Composer.ChannelDashboard(ctx, actorID)
	if err != nil {
		logging.FromContext(ctx).Error("dashboard stats failed", "error", err, "userId", actorID)
		respondError(ctx, w, errorStatus(err), "unable to load dashboard")
		return
	}

	respondJSON(ctx, w, http.StatusOK, stats)
}
