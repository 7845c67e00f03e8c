package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

const maxUploadMemory = 32 << 20

// UserHandler implements account profile and channel endpoints.
type UserHandler struct {
	Users    UserStore
	Composer ViewComposer
	Sessions SessionManager
	Storage  AssetStorage
	NowFunc  func() time.Time
}

// Me handles GET /api/v1/users/me.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
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

	user, err := h.Users.ByID(ctx, actorID)
	if err != nil {
		logging.FromContext(ctx).Error("resolve current user", "error", err, "userId", actorID)
		respondError(ctx, w, errorStatus(err), "unable to load account")
		return
	}

	respondJSON(ctx, w, http.StatusOK, publicUser(user))
}

// Channel handles GET /api/v1/channels/{username}.
func (h UserHandler) Channel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	username := r.PathValue("username")
	if strings.TrimSpace(username) == "" {
		respondError(ctx, w, http.StatusBadRequest, "username is required")
		return
	}

	viewerID := optionalActor(ctx, r, h.Sessions)
	profile, err := h.Composer.ChannelProfile(ctx, username, viewerID)
	if err != nil {
		logging.FromContext(ctx).Warn("channel profile failed", "username", username, "error", err)
		respondError(ctx, w, errorStatus(err), "unable to load channel")
		return
	}

	respondJSON(ctx, w, http.StatusOK, profile)
}

// WatchHistory handles GET /api/v1/users/me/history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
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

	page, limit := pageParams(r)
	history, err := h.Composer.WatchHistory(ctx, actorID, page, limit)
	if err != nil {
		logging.FromContext(ctx).Error("watch history failed", "error", err, "userId", actorID)
		respondError(ctx, w, errorStatus(err), "unable to load watch history")
		return
	}

	respondJSON(ctx, w, http.StatusOK, history)
}

// UpdateProfile handles PATCH /api/v1/users/me.
func (h UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
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

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid profile payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Users.ByID(ctx, actorID)
	if err != nil {
		logger.Error("profile lookup failed", "error", err, "userId", actorID)
		respondError(ctx, w, errorStatus(err), "unable to update profile")
		return
	}

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" {
			respondError(ctx, w, http.StatusBadRequest, "display name must not be empty")
			return
		}
		user.DisplayName = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			respondError(ctx, w, http.StatusBadRequest, "invalid email address")
			return
		}
		user.Email = email
	}

	user.UpdatedAt = h.now()
	if err := h.Users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "email already taken")
			return
		}
		logger.Error("profile update failed", "error", err, "userId", actorID)
		respondError(ctx, w, errorStatus(err), "unable to update profile")
		return
	}

	respondJSON(ctx, w, http.StatusOK, publicUser(user))
}

// ReplaceAvatar handles PUT /api/v1/users/me/avatar.
func (h UserHandler) ReplaceAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", func(user *models.User) *models.Asset { return &user.Avatar })
}

// ReplaceCover handles PUT /api/v1/users/me/cover.
func (h UserHandler) ReplaceCover(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", func(user *models.User) *models.Asset { return &user.CoverImage })
}

// replaceImage uploads the new image, swaps the user's asset reference and
// removes the previous object. The old-object delete is best-effort.
func (h UserHandler) replaceImage(w http.ResponseWriter, r *http.Request, field string, pick func(*models.User) *models.Asset) {
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

	file, header, ok := formFile(ctx, w, r, field)
	if !ok {
		return
	}
	defer file.Close()

	user, err := h.Users.ByID(ctx, actorID)
	if err != nil {
		logger.Error("image replace lookup failed", "error", err, "userId", actorID)
		respondError(ctx, w, errorStatus(err), "unable to update image")
		return
	}

	asset, err := h.Storage.Save(ctx, uploadKey(field+"s", header.Filename), file)
	if err != nil {
		logger.Error("image upload failed", "error", err, "field", field)
		respondError(ctx, w, http.StatusInternalServerError, "unable to store image")
		return
	}

	slot := pick(&user)
	previous := *slot
	*slot = asset
	user.UpdatedAt = h.now()

	if err := h.Users.Update(ctx, user); err != nil {
		logger.Error("image replace update failed", "error", err, "userId", actorID)
		respondError(ctx, w, errorStatus(err), "unable to update image")
		return
	}

	if previous.ProviderID != "" {
		if err := h.Storage.Delete(ctx, previous.ProviderID); err != nil {
			logger.Warn("delete replaced image", "providerId", previous.ProviderID, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, publicUser(user))
}

type updateProfileRequest struct {
	DisplayName *string `json:"displayName"`
	Email       *string `json:"email"`
}

func formFile(ctx context.Context, w http.ResponseWriter, r *http.Request, field string) (multipart.File, *multipart.FileHeader, bool) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return nil, nil, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, fmt.Sprintf("%s file is required", field))
		return nil, nil, false
	}

	return file, header, true
}

func uploadKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), ext)
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
