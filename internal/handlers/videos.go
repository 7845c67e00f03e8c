package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

// VideoHandler implements video publishing and viewing endpoints.
type VideoHandler struct {
	Videos   VideoStore
	Composer ViewComposer
	Sessions SessionManager
	Storage  AssetStorage
	NowFunc  func() time.Time
}

// Publish handles POST /api/v1/videos. The request is a multipart form
// carrying the video file, its thumbnail and the descriptive fields.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		respondError(ctx, w, http.StatusBadRequest, "title is required")
		return
	}
	description := strings.TrimSpace(r.FormValue("description"))

	duration, err := strconv.ParseFloat(r.FormValue("duration"), 64)
	if err != nil || duration < 0 {
		respondError(ctx, w, http.StatusBadRequest, "duration must be a non-negative number of seconds")
		return
	}

	videoFile, videoHeader, err := r.FormFile("videoFile")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "videoFile is required")
		return
	}
	defer videoFile.Close()

	thumbFile, thumbHeader, err := r.FormFile("thumbnail")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "thumbnail is required")
		return
	}
	defer thumbFile.Close()

	fileAsset, err := h.Storage.Save(ctx, uploadKey("videos", videoHeader.Filename), videoFile)
	if err != nil {
		logger.Error("video upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to store video")
		return
	}

	thumbAsset, err := h.Storage.Save(ctx, uploadKey("thumbnails", thumbHeader.Filename), thumbFile)
	if err != nil {
		logger.Error("thumbnail upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to store thumbnail")
		return
	}

	now := h.now()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     actorID,
		Title:       title,
		Description: description,
		File:        fileAsset,
		Thumbnail:   thumbAsset,
		Duration:    duration,
		Published:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		logger.Error("video create failed", "error", err, "videoId", video.ID)
		respondError(ctx, w, errorStatus(err), "unable to publish video")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, videoResponse(video))
}

// List handles GET /api/v1/videos.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	q := r.URL.Query()
	page, limit := pageParams(r)

	result, err := h.Composer.ListVideos(ctx, views.VideoListOptions{
		Query:     q.Get("query"),
		OwnerID:   q.Get("ownerId"),
		Sort:      views.SortField(q.Get("sortBy")),
		Ascending: q.Get("order") == "asc",
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("video listing failed", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "unable to list videos")
		return
	}

	respondJSON(ctx, w, http.StatusOK, result)
}

// Detail handles GET /api/v1/videos/{id}.
func (h VideoHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	videoID := r.PathValue("id")
	viewerID := optionalActor(ctx, r, h.Sessions)

	detail, err := h.Composer.VideoDetail(ctx, videoID, viewerID)
	if err != nil {
		logging.FromContext(ctx).Warn("video detail failed", "videoId", videoID, "error", err)
		respondError(ctx, w, errorStatus(err), "unable to load video")
		return
	}

	respondJSON(ctx, w, http.StatusOK, detail)
}

// Update handles PATCH /api/v1/videos/{id}. Only the owner may edit.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	video, ok := h.ownedVideo(ctx, w, r.PathValue("id"), actorID)
	if !ok {
		return
	}

	var req updateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid video payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			respondError(ctx, w, http.StatusBadRequest, "title must not be empty")
			return
		}
		video.Title = title
	}
	if req.Description != nil {
		video.Description = strings.TrimSpace(*req.Description)
	}

	video.UpdatedAt = h.now()
	if err := h.Videos.Update(ctx, video); err != nil {
		logger.Error("video update failed", "error", err, "videoId", video.ID)
		respondError(ctx, w, errorStatus(err), "unable to update video")
		return
	}

	respondJSON(ctx, w, http.StatusOK, videoResponse(video))
}

// TogglePublish handles POST /api/v1/videos/{id}/toggle-publish.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	actorID, ok := requireActor(ctx, w, r, h.Sessions)
	if !ok {
		return
	}
	ctx = logging.WithActorID(ctx, actorID)

	video, ok := h.ownedVideo(ctx, w, r.PathValue("id"), actorID)
	if !ok {
		return
	}

	video.Published = !video.Published
	video.UpdatedAt = h.now()
	if err := h.Videos.Update(ctx, video); err != nil {
		logging.FromContext(ctx).Error("toggle publish failed", "error", err, "videoId", video.ID)
		respondError(ctx, w, errorStatus(err), "unable to update video")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"published": video.Published})
}

// ReplaceThumbnail handles PUT /api/v1/videos/{id}/thumbnail. The new image is
// uploaded, the record updated, and the previous object removed best-effort.
func (h VideoHandler) ReplaceThumbnail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
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

	video, ok := h.ownedVideo(ctx, w, r.PathValue("id"), actorID)
	if !ok {
		return
	}

	file, header, ok := formFile(ctx, w, r, "thumbnail")
	if !ok {
		return
	}
	defer file.Close()

	asset, err := h.Storage.Save(ctx, uploadKey("thumbnails", header.Filename), file)
	if err != nil {
		logger.Error("thumbnail upload failed", "error", err, "videoId", video.ID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to store thumbnail")
		return
	}

	previous := video.Thumbnail
	video.Thumbnail = asset
	video.UpdatedAt = h.now()

	if err := h.Videos.Update(ctx, video); err != nil {
		logger.Error("thumbnail replace failed", "error", err, "videoId", video.ID)
		respondError(ctx, w, errorStatus(err), "unable to update video")
		return
	}

	if previous.ProviderID != "" {
		if err := h.Storage.Delete(ctx, previous.ProviderID); err != nil {
			logger.Warn("delete replaced thumbnail", "providerId", previous.ProviderID, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, videoResponse(video))
}

// Delete handles DELETE /api/v1/videos/{id}. The stored objects are removed
// after the record; a failed object delete is logged, not surfaced.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
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

	video, ok := h.ownedVideo(ctx, w, r.PathValue("id"), actorID)
	if !ok {
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		logger.Error("video delete failed", "error", err, "videoId", video.ID)
		respondError(ctx, w, errorStatus(err), "unable to delete video")
		return
	}

	for _, providerID := range []string{video.File.ProviderID, video.Thumbnail.ProviderID} {
		if providerID == "" {
			continue
		}
		if err := h.Storage.Delete(ctx, providerID); err != nil {
			logger.Warn("delete video object", "providerId", providerID, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ownedVideo loads the video and enforces that the actor owns it, writing the
// error response on failure.
func (h VideoHandler) ownedVideo(ctx context.Context, w http.ResponseWriter, videoID, actorID string) (models.Video, bool) {
	video, err := h.Videos.ByID(ctx, videoID)
	if err != nil {
		logging.FromContext(ctx).Warn("video lookup failed", "videoId", videoID, "error", err)
		respondError(ctx, w, errorStatus(err), "unable to load video")
		return models.Video{}, false
	}

	if video.OwnerID != actorID {
		respondError(ctx, w, http.StatusForbidden, "only the owner may modify this video")
		return models.Video{}, false
	}

	return video, true
}

type updateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type videoPayload struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	FileURL      string    `json:"fileUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	Published    bool      `json:"published"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func videoResponse(video models.Video) videoPayload {
	return videoPayload{
		ID:           video.ID,
		OwnerID:      video.OwnerID,
		Title:        video.Title,
		Description:  video.Description,
		FileURL:      video.File.URL,
		ThumbnailURL: video.Thumbnail.URL,
		Duration:     video.Duration,
		Views:        video.Views,
		Published:    video.Published,
		CreatedAt:    video.CreatedAt,
		UpdatedAt:    video.UpdatedAt,
	}
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
