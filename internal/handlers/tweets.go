package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// TweetHandler implements tweet endpoints.
type TweetHandler struct {
	Tweets   TweetStore
	Composer ViewComposer
	Sessions SessionManager
	NowFunc  func() time.Time
}

// Feed handles GET /api/v1/channels/{username}/tweets.
func (h TweetHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	username := r.PathValue("username")
	viewerID := optionalActor(ctx, r, h.Sessions)

	feed, err := h.Composer.TweetFeed(ctx, username, viewerID)
	if err != nil {
		logging.FromContext(ctx).Warn("tweet feed failed", "username", username, "error", err)
		respondError(ctx, w, errorStatus(err), "unable to load tweets")
		return
	}

	respondJSON(ctx, w, http.StatusOK, feed)
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	actorID, ok := requireActor(ctx, w, r, h.Sessions)
	if !ok {
		return
	}
	ctx = logging.WithActorID(ctx, actorID)

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid tweet payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   actorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		logger.Error("tweet create failed", "error", err)
		respondError(ctx, w, errorStatus(err), "unable to post tweet")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, tweetResponse(tweet))
}

// Update handles PATCH /api/v1/tweets/{id}. Only the owner may edit.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	actorID, ok := requireActor(ctx, w, r, h.Sessions)
	if !ok {
		return
	}
	ctx = logging.WithActorID(ctx, actorID)

	tweet, ok := h.ownedTweet(ctx, w, r.PathValue("id"), actorID)
	if !ok {
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid tweet payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	tweet.Content = content
	tweet.UpdatedAt = h.now()
	if err := h.Tweets.Update(ctx, tweet); err != nil {
		logger.Error("tweet update failed", "error", err, "tweetId", tweet.ID)
		respondError(ctx, w, errorStatus(err), "unable to update tweet")
		return
	}

	respondJSON(ctx, w, http.StatusOK, tweetResponse(tweet))
}

// Delete handles DELETE /api/v1/tweets/{id}. Only the owner may delete.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	actorID, ok := requireActor(ctx, w, r, h.Sessions)
	if !ok {
		return
	}
	ctx = logging.WithActorID(ctx, actorID)

	tweet, ok := h.ownedTweet(ctx, w, r.PathValue("id"), actorID)
	if !ok {
		return
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		logging.FromContext(ctx).Error("tweet delete failed", "error", err, "tweetId", tweet.ID)
		respondError(ctx, w, errorStatus(err), "unable to delete tweet")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h TweetHandler) ownedTweet(ctx context.Context, w http.ResponseWriter, tweetID, actorID string) (models.Tweet, bool) {
	tweet, err := h.Tweets.ByID(ctx, tweetID)
	if err != nil {
		logging.FromContext(ctx).Warn("tweet lookup failed", "tweetId", tweetID, "error", err)
		respondError(ctx, w, errorStatus(err), "unable to load tweet")
		return models.Tweet{}, false
	}

	if tweet.OwnerID != actorID {
		respondError(ctx, w, http.StatusForbidden, "only the owner may modify this tweet")
		return models.Tweet{}, false
	}

	return tweet, true
}

type tweetRequest struct {
	Content string `json:"content"`
}

type tweetPayload struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func tweetResponse(tweet models.Tweet) tweetPayload {
	return tweetPayload{
		ID:        tweet.ID,
		OwnerID:   tweet.OwnerID,
		Content:   tweet.Content,
		CreatedAt: tweet.CreatedAt,
		UpdatedAt: tweet.UpdatedAt,
	}
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
