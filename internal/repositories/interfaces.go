package repositories

import (
	"context"
	"time"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

// UserRepository defines the data access contract for users and their watch
// history.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	ByID(ctx context.Context, id string) (models.User, error)
	ByUsername(ctx context.Context, username string) (models.User, error)
	ByEmail(ctx context.Context, email string) (models.User, error)
	Update(ctx context.Context, user models.User) error
	AddWatchHistory(ctx context.Context, userID, videoID string) error
	WatchHistory(ctx context.Context, userID string) ([]views.VideoListItem, error)
}

// VideoRepository defines data access for videos, including the composed
// listing and rollup queries.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	ByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	ListPage(ctx context.Context, filter views.VideoFilter) ([]views.VideoListItem, int, error)
	LatestByOwner(ctx context.Context, ownerID string) (*models.Video, error)
	OwnerStats(ctx context.Context, ownerID string) (views.ChannelStats, error)
}

// CommentRepository defines data access for comments on videos.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	ByID(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error
	FeedPage(ctx context.Context, videoID, viewerID string, offset, limit int) ([]views.CommentView, int, error)
}

// TweetRepository defines data access for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	ByID(ctx context.Context, id string) (models.Tweet, error)
	Update(ctx context.Context, tweet models.Tweet) error
	Delete(ctx context.Context, id string) error
	FeedForOwner(ctx context.Context, ownerID, viewerID string) ([]views.TweetView, error)
}

// LikeRepository defines conditional writes and reads over like edges.
type LikeRepository interface {
	Insert(ctx context.Context, like models.Like) (bool, error)
	Delete(ctx context.Context, actorID string, target models.LikeTarget) (bool, error)
	Count(ctx context.Context, target models.LikeTarget) (int, error)
	Exists(ctx context.Context, userID string, target models.LikeTarget) (bool, error)
	LikedVideos(ctx context.Context, viewerID string) ([]views.LikedVideoEntry, error)
}

// SubscriptionRepository defines conditional writes and reads over
// subscription edges.
type SubscriptionRepository interface {
	Insert(ctx context.Context, subscription models.Subscription) (bool, error)
	Delete(ctx context.Context, subscriberID, channelID string) (bool, error)
	CountForChannel(ctx context.Context, channelID string) (int, error)
	CountForSubscriber(ctx context.Context, subscriberID string) (int, error)
	Exists(ctx context.Context, subscriberID, channelID string) (bool, error)
	ListForChannel(ctx context.Context, channelID string) ([]models.Subscription, error)
	ListForSubscriber(ctx context.Context, subscriberID string) ([]models.Subscription, error)
}

// PlaylistRepository defines data access for playlists and their video
// references.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	ByID(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string, at time.Time) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	PublishedVideos(ctx context.Context, playlistID string) ([]views.PlaylistVideo, error)
	PublishedRollup(ctx context.Context, playlistID string) (int, int64, error)
}
