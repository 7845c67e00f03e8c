package handlers

import (
	"context"
	"io"
	"time"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

// UserStore captures the persistence operations required by the auth and
// profile handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	ByID(ctx context.Context, id string) (models.User, error)
	ByUsername(ctx context.Context, username string) (models.User, error)
	ByEmail(ctx context.Context, email string) (models.User, error)
	Update(ctx context.Context, user models.User) error
}

// SessionManager issues, refreshes and resolves authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Authenticate(ctx context.Context, accessToken string) (string, error)
	Revoke(ctx context.Context, refreshToken string)
}

// ViewComposer assembles viewer-relative read models. Read endpoints go
// through it rather than the entity stores directly.
type ViewComposer interface {
	ChannelProfile(ctx context.Context, username, viewerID string) (views.ChannelProfile, error)
	VideoDetail(ctx context.Context, videoID, viewerID string) (views.VideoDetail, error)
	CommentFeed(ctx context.Context, videoID, viewerID string, page, limit int) (views.Page[views.CommentView], error)
	TweetFeed(ctx context.Context, username, viewerID string) ([]views.TweetView, error)
	PlaylistDetail(ctx context.Context, playlistID string) (views.PlaylistDetail, error)
	UserPlaylists(ctx context.Context, userID string) ([]views.PlaylistSummary, error)
	ChannelDashboard(ctx context.Context, ownerID string) (views.ChannelStats, error)
	SubscriberList(ctx context.Context, channelID string) (views.SubscriberList, error)
	SubscribedChannelList(ctx context.Context, subscriberID string) (views.SubscribedChannelList, error)
	LikedVideos(ctx context.Context, viewerID string) ([]views.LikedVideoEntry, error)
	ListVideos(ctx context.Context, opts views.VideoListOptions) (views.Page[views.VideoListItem], error)
	WatchHistory(ctx context.Context, userID string, page, limit int) (views.Page[views.VideoListItem], error)
}

// EngagementToggler flips like and subscription edges on behalf of an actor.
type EngagementToggler interface {
	ToggleLike(ctx context.Context, actorID string, target models.LikeTarget) (bool, error)
	ToggleSubscription(ctx context.Context, actorID, channelID string) (bool, error)
}

// VideoStore captures the write-side persistence for videos.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	ByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
}

// CommentStore captures the write-side persistence for comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	ByID(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error
}

// TweetStore captures the write-side persistence for tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	ByID(ctx context.Context, id string) (models.Tweet, error)
	Update(ctx context.Context, tweet models.Tweet) error
	Delete(ctx context.Context, id string) error
}

// PlaylistStore captures the write-side persistence for playlists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	ByID(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string, at time.Time) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// AssetStorage persists uploaded files and removes replaced ones.
type AssetStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (models.Asset, error)
	Delete(ctx context.Context, providerID string) error
}
