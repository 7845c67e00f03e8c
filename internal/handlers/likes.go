package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// LikeHandler implements like toggle and listing endpoints.
type LikeHandler struct {
	Toggler  EngagementToggler
	Composer ViewComposer
	Sessions SessionManager
	Limiter  RateLimiter
}

// ToggleVideo handles POST /api/v1/likes/videos/{id}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetVideo)
}

// ToggleComment handles POST /api/v1/likes/comments/{id}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetComment)
}

// ToggleTweet handles POST /api/v1/likes/tweets/{id}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetTweet)
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind models.LikeTargetKind) {
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

	target := models.LikeTarget{Kind: kind, ID: r.PathValue("id")}
	liked, err := h.Toggler.ToggleLike(ctx, actorID, target)
	if err != nil {
		logging.FromContext(ctx).Warn("like toggle failed", "kind", string(kind), "targetId", target.ID, "error", err)
		respondError(ctx, w, errorStatus(err), "unable to toggle like")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"liked": liked})
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
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

	entries, err := h.Composer.LikedVideos(ctx, actorID)
	if err != nil {
		logging.FromContext(ctx).Error("liked videos failed", "error", err, "userId", actorID)
		respondError(ctx, w, errorStatus(err), "unable to load liked videos")
		return
	}

	respondJSON(ctx, w, http.StatusOK, entries)
}
