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

// PlaylistHandler implements playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Composer  ViewComposer
	Sessions  SessionManager
	NowFunc   func() time.Time
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid playlist payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(ctx, w, http.StatusBadRequest, "name is required")
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     actorID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		logger.Error("playlist create failed", "error", err)
		respondError(ctx, w, errorStatus(err), "unable to create playlist")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, playlistResponse(playlist))
}

// Detail handles GET /api/v1/playlists/{id}.
func (h PlaylistHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	playlistID := r.PathValue("id")

	detail, err := h.Composer.PlaylistDetail(ctx, playlistID)
	if err != nil {
		logging.FromContext(ctx).Warn("playlist detail failed", "playlistId", playlistID, "error", err)
		respondError(ctx, w, errorStatus(err), "unable to load playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, detail)
}

// ForUser handles GET /api/v1/users/{id}/playlists.
func (h PlaylistHandler) ForUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	userID := r.PathValue("id")

	summaries, err := h.Composer.UserPlaylists(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Warn("user playlists failed", "userId", userID, "error", err)
		respondError(ctx, w, errorStatus(err), "unable to load playlists")
		return
	}

	respondJSON(ctx, w, http.StatusOK, summaries)
}

// Update handles PATCH /api/v1/playlists/{id}. Only the owner may edit.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	playlist, ok := h.ownedPlaylist(ctx, w, r.PathValue("id"), actorID)
	if !ok {
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid playlist payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		playlist.Name = name
	}
	playlist.Description = strings.TrimSpace(req.Description)
	playlist.UpdatedAt = h.now()

	if err := h.Playlists.Update(ctx, playlist); err != nil {
		logger.Error("playlist update failed", "error", err, "playlistId", playlist.ID)
		respondError(ctx, w, errorStatus(err), "unable to update playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, playlistResponse(playlist))
}

// Delete handles DELETE /api/v1/playlists/{id}. Only the owner may delete.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	playlist, ok := h.ownedPlaylist(ctx, w, r.PathValue("id"), actorID)
	if !ok {
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		logging.FromContext(ctx).Error("playlist delete failed", "error", err, "playlistId", playlist.ID)
		respondError(ctx, w, errorStatus(err), "unable to delete playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddVideo handles POST /api/v1/playlists/{id}/videos/{videoId}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
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

	playlist, ok := h.ownedPlaylist(ctx, w, r.PathValue("id"), actorID)
	if !ok {
		return
	}

	videoID := r.PathValue("videoId")
	if err := h.Playlists.AddVideo(ctx, playlist.ID, videoID, h.now()); err != nil {
		logging.FromContext(ctx).Warn("playlist add video failed", "playlistId", playlist.ID, "videoId", videoID, "error", err)
		respondError(ctx, w, errorStatus(err), "unable to add video to playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "added"})
}

// RemoveVideo handles DELETE /api/v1/playlists/{id}/videos/{videoId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
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

	playlist, ok := h.ownedPlaylist(ctx, w, r.PathValue("id"), actorID)
	if !ok {
		return
	}

	videoID := r.PathValue("videoId")
	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, videoID); err != nil {
		logging.FromContext(ctx).Warn("playlist remove video failed", "playlistId", playlist.ID, "videoId", videoID, "error", err)
		respondError(ctx, w, errorStatus(err), "unable to remove video from playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h PlaylistHandler) ownedPlaylist(ctx context.Context, w http.ResponseWriter, playlistID, actorID string) (models.Playlist, bool) {
	playlist, err := h.Playlists.ByID(ctx, playlistID)
	if err != nil {
		logging.FromContext(ctx).Warn("playlist lookup failed", "playlistId", playlistID, "error", err)
		respondError(ctx, w, errorStatus(err), "unable to load playlist")
		return models.Playlist{}, false
	}

	if playlist.OwnerID != actorID {
		respondError(ctx, w, http.StatusForbidden, "only the owner may modify this playlist")
		return models.Playlist{}, false
	}

	return playlist, true
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type playlistPayload struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func playlistResponse(playlist models.Playlist) playlistPayload {
	return playlistPayload{
		ID:          playlist.ID,
		OwnerID:     playlist.OwnerID,
		Name:        playlist.Name,
		Description: playlist.Description,
		CreatedAt:   playlist.CreatedAt,
		UpdatedAt:   playlist.UpdatedAt,
	}
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
