package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// UserStore captures the user reads the composer needs.
type UserStore interface {
	ByID(ctx context.Context, id string) (models.User, error)
	ByUsername(ctx context.Context, username string) (models.User, error)
	AddWatchHistory(ctx context.Context, userID, videoID string) error
	WatchHistory(ctx context.Context, userID string) ([]VideoListItem, error)
}

// VideoStore captures the video reads the composer needs. LatestByOwner
// returns nil when the owner has no videos.
type VideoStore interface {
	ByID(ctx context.Context, id string) (models.Video, error)
	IncrementViews(ctx context.Context, id string) error
	ListPage(ctx context.Context, filter VideoFilter) ([]VideoListItem, int, error)
	LatestByOwner(ctx context.Context, ownerID string) (*models.Video, error)
	OwnerStats(ctx context.Context, ownerID string) (ChannelStats, error)
}

// CommentStore returns one window of a video's comment feed plus the total
// comment count for that video.
type CommentStore interface {
	FeedPage(ctx context.Context, videoID, viewerID string, offset, limit int) ([]CommentView, int, error)
}

// TweetStore returns a user's tweets with like rollups relative to the viewer.
type TweetStore interface {
	FeedForOwner(ctx context.Context, ownerID, viewerID string) ([]TweetView, error)
}

// LikeStore captures like-edge reads.
type LikeStore interface {
	Count(ctx context.Context, target models.LikeTarget) (int, error)
	Exists(ctx context.Context, userID string, target models.LikeTarget) (bool, error)
	LikedVideos(ctx context.Context, viewerID string) ([]LikedVideoEntry, error)
}

// SubscriptionStore captures subscription-edge reads.
type SubscriptionStore interface {
	CountForChannel(ctx context.Context, channelID string) (int, error)
	CountForSubscriber(ctx context.Context, subscriberID string) (int, error)
	Exists(ctx context.Context, subscriberID, channelID string) (bool, error)
	ListForChannel(ctx context.Context, channelID string) ([]models.Subscription, error)
	ListForSubscriber(ctx context.Context, subscriberID string) ([]models.Subscription, error)
}

// PlaylistStore captures playlist reads. Published* methods only consider
// referenced videos whose published flag is set.
type PlaylistStore interface {
	ByID(ctx context.Context, id string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	PublishedVideos(ctx context.Context, playlistID string) ([]PlaylistVideo, error)
	PublishedRollup(ctx context.Context, playlistID string) (totalVideos int, totalViews int64, err error)
}

// sideEffectTimeout bounds the detached view-count and watch-history writes.
const sideEffectTimeout = 5 * time.Second

// Composer joins entity and edge reads into viewer-relative views. It holds
// no state of its own; everything lives behind the store interfaces.
type Composer struct {
	Users         UserStore
	Videos        VideoStore
	Comments      CommentStore
	Tweets        TweetStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Playlists     PlaylistStore

	DefaultLimit int
	MaxLimit     int
}

// ChannelProfile resolves a channel page by case-insensitive username, with
// subscription rollups relative to the viewer.
func (c *Composer) ChannelProfile(ctx context.Context, username, viewerID string) (ChannelProfile, error) {
	user, err := c.Users.ByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return ChannelProfile{}, fmt.Errorf("resolve channel %q: %w", username, err)
	}

	var (
		subscriberCount   int
		subscribedToCount int
		isSubscribed      bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		subscriberCount, err = c.Subscriptions.CountForChannel(gctx, user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		subscribedToCount, err = c.Subscriptions.CountForSubscriber(gctx, user.ID)
		return err
	})
	if viewerID != "" {
		g.Go(func() error {
			var err error
			isSubscribed, err = c.Subscriptions.Exists(gctx, viewerID, user.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return ChannelProfile{}, fmt.Errorf("channel rollups for %s: %w", user.ID, err)
	}

	return ChannelProfile{
		UserID:            user.ID,
		Username:          user.Username,
		DisplayName:       user.DisplayName,
		AvatarURL:         user.Avatar.URL,
		CoverImageURL:     user.CoverImage.URL,
		SubscriberCount:   subscriberCount,
		SubscribedToCount: subscribedToCount,
		IsSubscribed:      isSubscribed,
	}, nil
}

// VideoDetail joins a video with its like rollup and owner channel summary.
// Each call bumps the stored view counter and, for signed-in viewers, appends
// the video to their watch history. Both writes are best-effort and never
// fail the read.
func (c *Composer) VideoDetail(ctx context.Context, videoID, viewerID string) (VideoDetail, error) {
	ctx, span := logging.StartSpan(ctx, "views.video_detail")
	defer span.End()

	video, err := c.Videos.ByID(ctx, videoID)
	if err != nil {
		return VideoDetail{}, fmt.Errorf("resolve video %s: %w", videoID, err)
	}

	target := models.LikeTarget{Kind: models.LikeTargetVideo, ID: video.ID}

	var (
		likeCount       int
		isLiked         bool
		owner           models.User
		subscriberCount int
		isSubscribed    bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		likeCount, err = c.Likes.Count(gctx, target)
		return err
	})
	g.Go(func() error {
		var err error
		owner, err = c.Users.ByID(gctx, video.OwnerID)
		if err != nil {
			return fmt.Errorf("resolve video owner %s: %w", video.OwnerID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		subscriberCount, err = c.Subscriptions.CountForChannel(gctx, video.OwnerID)
		return err
	})
	if viewerID != "" {
		g.Go(func() error {
			var err error
			isLiked, err = c.Likes.Exists(gctx, viewerID, target)
			return err
		})
		g.Go(func() error {
			var err error
			isSubscribed, err = c.Subscriptions.Exists(gctx, viewerID, video.OwnerID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return VideoDetail{}, err
	}

	c.recordView(ctx, video.ID, viewerID)

	return VideoDetail{
		VideoID:      video.ID,
		Title:        video.Title,
		Description:  video.Description,
		FileURL:      video.File.URL,
		ThumbnailURL: video.Thumbnail.URL,
		Duration:     video.Duration,
		Views:        video.Views,
		Published:    video.Published,
		CreatedAt:    video.CreatedAt,
		LikeCount:    likeCount,
		IsLiked:      isLiked,
		Owner: VideoOwner{
			OwnerSummary:    ownerSummary(owner),
			SubscriberCount: subscriberCount,
			IsSubscribed:    isSubscribed,
		},
	}, nil
}

// recordView bumps the view counter and watch history off the request path.
// A failed write is logged, never surfaced.
func (c *Composer) recordView(ctx context.Context, videoID, viewerID string) {
	logger := logging.FromContext(ctx)
	detached := context.WithoutCancel(ctx)

	go func() {
		ctx, cancel := context.WithTimeout(detached, sideEffectTimeout)
		defer cancel()

		if err := c.Videos.IncrementViews(ctx, videoID); err != nil {
			logger.Warn("increment video views", "videoId", videoID, "error", err)
		}
		if viewerID == "" {
			return
		}
		if err := c.Users.AddWatchHistory(ctx, viewerID, videoID); err != nil {
			logger.Warn("append watch history", "userId", viewerID, "videoId", videoID, "error", err)
		}
	}()
}

// CommentFeed returns one page of a video's comments, newest first.
func (c *Composer) CommentFeed(ctx context.Context, videoID, viewerID string, page, limit int) (Page[CommentView], error) {
	if _, err := c.Videos.ByID(ctx, videoID); err != nil {
		return Page[CommentView]{}, fmt.Errorf("resolve video %s: %w", videoID, err)
	}

	page, limit = c.normalize(page, limit)
	offset, lim := Window(page, limit)

	items, total, err := c.Comments.FeedPage(ctx, videoID, viewerID, offset, lim)
	if err != nil {
		return Page[CommentView]{}, fmt.Errorf("comment feed for video %s: %w", videoID, err)
	}

	return NewPage(items, page, limit, total), nil
}

// TweetFeed returns all tweets of the named user, newest first, with like
// rollups relative to the viewer.
func (c *Composer) TweetFeed(ctx context.Context, username, viewerID string) ([]TweetView, error) {
	user, err := c.Users.ByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, fmt.Errorf("resolve user %q: %w", username, err)
	}

	tweets, err := c.Tweets.FeedForOwner(ctx, user.ID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("tweet feed for %s: %w", user.ID, err)
	}
	if tweets == nil {
		tweets = []TweetView{}
	}
	return tweets, nil
}

// PlaylistDetail joins a playlist with its published videos and computes the
// rollups over that filtered set. A playlist with no published videos is a
// valid empty view.
func (c *Composer) PlaylistDetail(ctx context.Context, playlistID string) (PlaylistDetail, error) {
	playlist, err := c.Playlists.ByID(ctx, playlistID)
	if err != nil {
		return PlaylistDetail{}, fmt.Errorf("resolve playlist %s: %w", playlistID, err)
	}

	owner, err := c.Users.ByID(ctx, playlist.OwnerID)
	if err != nil {
		return PlaylistDetail{}, fmt.Errorf("resolve playlist owner %s: %w", playlist.OwnerID, err)
	}

	videos, err := c.Playlists.PublishedVideos(ctx, playlist.ID)
	if err != nil {
		return PlaylistDetail{}, fmt.Errorf("playlist videos for %s: %w", playlist.ID, err)
	}
	if videos == nil {
		videos = []PlaylistVideo{}
	}

	var totalViews int64
	for _, v := range videos {
		totalViews += v.Views
	}

	return PlaylistDetail{
		PlaylistID:  playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		CreatedAt:   playlist.CreatedAt,
		UpdatedAt:   playlist.UpdatedAt,
		Owner:       ownerSummary(owner),
		Videos:      videos,
		TotalVideos: len(videos),
		TotalViews:  totalViews,
	}, nil
}

// UserPlaylists lists a user's playlists with published-video rollups.
func (c *Composer) UserPlaylists(ctx context.Context, userID string) ([]PlaylistSummary, error) {
	playlists, err := c.Playlists.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("playlists for %s: %w", userID, err)
	}

	summaries := make([]PlaylistSummary, 0, len(playlists))
	for _, playlist := range playlists {
		totalVideos, totalViews, err := c.Playlists.PublishedRollup(ctx, playlist.ID)
		if err != nil {
			return nil, fmt.Errorf("rollup for playlist %s: %w", playlist.ID, err)
		}
		summaries = append(summaries, PlaylistSummary{
			PlaylistID:  playlist.ID,
			Name:        playlist.Name,
			Description: playlist.Description,
			TotalVideos: totalVideos,
			TotalViews:  totalViews,
			UpdatedAt:   playlist.UpdatedAt,
		})
	}
	return summaries, nil
}

// ChannelDashboard aggregates an owner's videos and subscribers. The two
// rollups are independent and fetched in parallel.
func (c *Composer) ChannelDashboard(ctx context.Context, ownerID string) (ChannelStats, error) {
	ctx, span := logging.StartSpan(ctx, "views.channel_dashboard")
	defer span.End()

	var stats ChannelStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		videoStats, err := c.Videos.OwnerStats(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("video stats for %s: %w", ownerID, err)
		}
		stats.TotalVideos = videoStats.TotalVideos
		stats.TotalViews = videoStats.TotalViews
		stats.TotalLikes = videoStats.TotalLikes
		return nil
	})
	g.Go(func() error {
		count, err := c.Subscriptions.CountForChannel(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("subscriber count for %s: %w", ownerID, err)
		}
		stats.TotalSubscribers = count
		return nil
	})
	if err := g.Wait(); err != nil {
		return ChannelStats{}, err
	}

	return stats, nil
}

// SubscriberList resolves each subscriber of a channel together with that
// subscriber's own channel rollup and whether the channel subscribes back.
func (c *Composer) SubscriberList(ctx context.Context, channelID string) (SubscriberList, error) {
	subscriptions, err := c.Subscriptions.ListForChannel(ctx, channelID)
	if err != nil {
		return SubscriberList{}, fmt.Errorf("subscriptions for channel %s: %w", channelID, err)
	}

	entries := make([]SubscriberEntry, 0, len(subscriptions))
	for _, sub := range subscriptions {
		subscriber, err := c.Users.ByID(ctx, sub.SubscriberID)
		if err != nil {
			return SubscriberList{}, fmt.Errorf("resolve subscriber %s: %w", sub.SubscriberID, err)
		}
		count, err := c.Subscriptions.CountForChannel(ctx, sub.SubscriberID)
		if err != nil {
			return SubscriberList{}, fmt.Errorf("subscriber count for %s: %w", sub.SubscriberID, err)
		}
		back, err := c.Subscriptions.Exists(ctx, channelID, sub.SubscriberID)
		if err != nil {
			return SubscriberList{}, fmt.Errorf("subscribed-back check for %s: %w", sub.SubscriberID, err)
		}
		entries = append(entries, SubscriberEntry{
			OwnerSummary:     ownerSummary(subscriber),
			SubscriberCount:  count,
			IsSubscribedBack: back,
		})
	}

	return SubscriberList{TotalSubscribers: len(entries), Subscribers: entries}, nil
}

// SubscribedChannelList resolves each channel a user subscribes to, with the
// channel's most recently created video when it has one.
func (c *Composer) SubscribedChannelList(ctx context.Context, subscriberID string) (SubscribedChannelList, error) {
	subscriptions, err := c.Subscriptions.ListForSubscriber(ctx, subscriberID)
	if err != nil {
		return SubscribedChannelList{}, fmt.Errorf("subscriptions for %s: %w", subscriberID, err)
	}

	entries := make([]SubscribedChannelEntry, 0, len(subscriptions))
	for _, sub := range subscriptions {
		channel, err := c.Users.ByID(ctx, sub.ChannelID)
		if err != nil {
			return SubscribedChannelList{}, fmt.Errorf("resolve channel %s: %w", sub.ChannelID, err)
		}

		entry := SubscribedChannelEntry{OwnerSummary: ownerSummary(channel)}

		latest, err := c.Videos.LatestByOwner(ctx, sub.ChannelID)
		if err != nil {
			return SubscribedChannelList{}, fmt.Errorf("latest video for %s: %w", sub.ChannelID, err)
		}
		if latest != nil {
			entry.LatestVideo = &LatestVideo{
				VideoID:      latest.ID,
				Title:        latest.Title,
				ThumbnailURL: latest.Thumbnail.URL,
				Duration:     latest.Duration,
				Views:        latest.Views,
				CreatedAt:    latest.CreatedAt,
			}
		}
		entries = append(entries, entry)
	}

	return SubscribedChannelList{TotalSubscribedChannels: len(entries), Channels: entries}, nil
}

// LikedVideos returns every video the viewer has liked, newest like first.
func (c *Composer) LikedVideos(ctx context.Context, viewerID string) ([]LikedVideoEntry, error) {
	entries, err := c.Likes.LikedVideos(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("liked videos for %s: %w", viewerID, err)
	}
	if entries == nil {
		entries = []LikedVideoEntry{}
	}
	return entries, nil
}

// ListVideos returns one page of published videos, optionally filtered by a
// text query and owner, ordered by the requested sort field.
func (c *Composer) ListVideos(ctx context.Context, opts VideoListOptions) (Page[VideoListItem], error) {
	sort := opts.Sort
	if sort == "" {
		sort = SortByCreatedAt
	}
	if !sort.Valid() {
		return Page[VideoListItem]{}, fmt.Errorf("unsupported sort field %q", opts.Sort)
	}

	page, limit := c.normalize(opts.Page, opts.Limit)
	offset, lim := Window(page, limit)

	items, total, err := c.Videos.ListPage(ctx, VideoFilter{
		Query:     strings.TrimSpace(opts.Query),
		OwnerID:   opts.OwnerID,
		Sort:      sort,
		Ascending: opts.Ascending,
		Offset:    offset,
		Limit:     lim,
	})
	if err != nil {
		return Page[VideoListItem]{}, fmt.Errorf("list videos: %w", err)
	}

	return NewPage(items, page, limit, total), nil
}

// WatchHistory returns one page of the user's watch history, most recently
// added first.
func (c *Composer) WatchHistory(ctx context.Context, userID string, page, limit int) (Page[VideoListItem], error) {
	items, err := c.Users.WatchHistory(ctx, userID)
	if err != nil {
		return Page[VideoListItem]{}, fmt.Errorf("watch history for %s: %w", userID, err)
	}

	page, limit = c.normalize(page, limit)
	return Paginate(items, page, limit), nil
}

func (c *Composer) normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = c.DefaultLimit
	}
	if limit < 1 {
		limit = 10
	}
	if c.MaxLimit > 0 && limit > c.MaxLimit {
		limit = c.MaxLimit
	}
	return page, limit
}

func ownerSummary(user models.User) OwnerSummary {
	return OwnerSummary{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		AvatarURL:   user.Avatar.URL,
	}
}
