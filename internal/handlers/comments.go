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

// CommentHandler implements comment endpoints.
type CommentHandler struct {
	Comments CommentStore
	Composer ViewComposer
	Sessions SessionManager
	NowFunc  func() time.Time
}

// Feed handles GET /api/v1/videos/{id}/comments.
func (h CommentHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	videoID := r.PathValue("id")
	viewerID := optionalActor(ctx, r, h.Sessions)
	page, limit := pageParams(r)

	feed, err := h.Composer.CommentFeed(ctx, videoID, viewerID, page, limit)
	if err != nil {
		logging.FromContext(ctx).Warn("comment feed failed", "videoId", videoID, "error", err)
		respondError(ctx, w, errorStatus(err), "unable to load comments")
		return
	}

	respondJSON(ctx, w, http.StatusOK, feed)
}

// Create handles POST /api/v1/videos/{id}/comments.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid comment payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		OwnerID:   actorID,
		VideoID:   r.PathValue("id"),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		logger.Error("comment create failed", "error", err, "videoId", comment.VideoID)
		respondError(ctx, w, errorStatus(err), "unable to add comment")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, commentResponse(comment))
}

// Update handles PATCH /api/v1/comments/{id}. Only the owner may edit.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	comment, ok := h.ownedComment(ctx, w, r.PathValue("id"), actorID)
	if !ok {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid comment payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	comment.Content = content
	comment.UpdatedAt = h.now()
	if err := h.Comments.Update(ctx, comment); err != nil {
		logger.Error("comment update failed", "error", err, "commentId", comment.ID)
		respondError(ctx, w, errorStatus(err), "unable to update comment")
		return
	}

	respondJSON(ctx, w, http.StatusOK, commentResponse(comment))
}

// Delete handles DELETE /api/v1/comments/{id}. Only the owner may delete.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	comment, ok := h.ownedComment(ctx, w, r.PathValue("id"), actorID)
	if !ok {
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		logging.FromContext(ctx).Error("comment delete failed", "error", err, "commentId", comment.ID)
		respondError(ctx, w, errorStatus(err), "unable to delete comment")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h CommentHandler) ownedComment(ctx context.Context, w http.ResponseWriter, commentID, actorID string) (models.Comment, bool) {
	comment, err := h.Comments.ByID(ctx, commentID)
	if err != nil {
		logging.FromContext(ctx).Warn("comment lookup failed", "commentId", commentID, "error", err)
		respondError(ctx, w, errorStatus(err), "unable to load comment")
		return models.Comment{}, false
	}

	if comment.OwnerID != actorID {
		respondError(ctx, w, http.StatusForbidden, "only the owner may modify this comment")
		return models.Comment{}, false
	}

	return comment, true
}

type commentRequest struct {
	Content string `json:"content"`
}

type commentPayload struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	VideoID   string    `json:"videoId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func commentResponse(comment models.Comment) commentPayload {
	return commentPayload{
		ID:        comment.ID,
		OwnerID:   comment.OwnerID,
		VideoID:   comment.VideoID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
