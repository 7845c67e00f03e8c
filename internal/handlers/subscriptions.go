package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/logging"
)

// SubscriptionHandler implements subscription toggle and listing endpoints.
type SubscriptionHandler struct {
	Toggler  EngagementToggler
	Composer ViewComposer
	Sessions SessionManager
	Limiter  RateLimiter
}

// Toggle handles POST /api/v1/subscriptions/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "toggle") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many requests")
		return
	}

	actorID, ok := requireActor(ctx, w, r, h.Sessions)
	if !ok {
		return
	}
	ctx = logging.WithActorID(ctx, actorID)

	channelID := r.PathValue("channelId")
	subscribed, err := h.Toggler.ToggleSubscription(ctx, actorID, channelID)
	if err != nil {
		logging.FromContext(ctx).Warn("subscription toggle failed", "channelId", channelID, "error", err)
		respondError(ctx, w, errorStatus(err), "unable to toggle subscription")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"subscribed": subscribed})
}

// Subscribers handles GET /api/v1/subscriptions/{channelId}/subscribers.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	channelID := r.PathValue("channelId")

	list, err := h.Composer.SubscriberList(ctx, channelID)
	if err != nil {
		logging.FromContext(ctx).Warn("subscriber list failed", "channelId", channelID, "error", err)
		respondError(ctx, w, errorStatus(err), "unable to load subscribers")
		return
	}

	respondJSON(ctx, w, http.StatusOK, list)
}

// Subscribed handles GET /api/v1/users/me/subscriptions.
func (h SubscriptionHandler) Subscribed(w http.ResponseWriter, r *http.Request) {
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

	list, err := h.Composer.SubscribedChannelList(ctx, actorID)
	if err != nil {
		logging.FromContext(ctx).Error("subscribed channels failed", "error", err, "userId", actorID)
		respondError(ctx, w, errorStatus(err), "unable to load subscriptions")
		return
	}

	respondJSON(ctx, w, http.StatusOK, list)
}
