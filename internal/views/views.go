// Package views builds derived, viewer-relative read models by joining
// entities with like and subscription edges. Every operation takes the viewer
// identity as an explicit parameter; an empty viewer id means an anonymous
// read and all viewer-relative flags come back false.
package views

import "time"

// OwnerSummary is the minimal public projection of a user attached to owned
// content. Credential fields are never part of any view.
type OwnerSummary struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// ChannelProfile is a user's public channel page, with subscription rollups
// relative to the requesting viewer.
type ChannelProfile struct {
	UserID            string `json:"userId"`
	Username          string `json:"username"`
	DisplayName       string `json:"displayName"`
	AvatarURL         string `json:"avatarUrl"`
	CoverImageURL     string `json:"coverImageUrl"`
	SubscriberCount   int    `json:"subscriberCount"`
	SubscribedToCount int    `json:"subscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

// VideoOwner is the owner projection embedded in a video detail view. The
// IsSubscribed flag is relative to the viewer, not the owner.
type VideoOwner struct {
	OwnerSummary
	SubscriberCount int  `json:"subscriberCount"`
	IsSubscribed    bool `json:"isSubscribed"`
}

// VideoDetail is the full single-video view.
type VideoDetail struct {
	VideoID      string     `json:"videoId"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	FileURL      string     `json:"fileUrl"`
	ThumbnailURL string     `json:"thumbnailUrl"`
	Duration     float64    `json:"duration"`
	Views        int64      `json:"views"`
	Published    bool       `json:"published"`
	CreatedAt    time.Time  `json:"createdAt"`
	LikeCount    int        `json:"likeCount"`
	IsLiked      bool       `json:"isLiked"`
	Owner        VideoOwner `json:"owner"`
}

// CommentView is one comment in a video's comment feed.
type CommentView struct {
	CommentID string       `json:"commentId"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	Owner     OwnerSummary `json:"owner"`
	LikeCount int          `json:"likeCount"`
	IsLiked   bool         `json:"isLiked"`
}

// TweetView is one tweet in a user's tweet feed. IsLiked is relative to the
// viewer, never the tweet owner.
type TweetView struct {
	TweetID   string       `json:"tweetId"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	Owner     OwnerSummary `json:"owner"`
	LikeCount int          `json:"likeCount"`
	IsLiked   bool         `json:"isLiked"`
}

// PlaylistVideo is a published video referenced by a playlist.
type PlaylistVideo struct {
	VideoID      string    `json:"videoId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	FileURL      string    `json:"fileUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PlaylistDetail joins a playlist with its published videos and owner.
// Unpublished references are filtered out before any rollup is computed.
type PlaylistDetail struct {
	PlaylistID  string          `json:"playlistId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Owner       OwnerSummary    `json:"owner"`
	Videos      []PlaylistVideo `json:"videos"`
	TotalVideos int             `json:"totalVideos"`
	TotalViews  int64           `json:"totalViews"`
}

// PlaylistSummary is one row in a user's playlist listing.
type PlaylistSummary struct {
	PlaylistID  string    `json:"playlistId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TotalVideos int       `json:"totalVideos"`
	TotalViews  int64     `json:"totalViews"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ChannelStats aggregates a channel owner's videos and subscribers. An owner
// with no videos or subscribers gets all-zero stats.
type ChannelStats struct {
	TotalVideos      int   `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int   `json:"totalLikes"`
	TotalSubscribers int   `json:"totalSubscribers"`
}

// SubscriberEntry is one subscriber of a channel, including that subscriber's
// own channel rollup and whether the channel subscribes back.
type SubscriberEntry struct {
	OwnerSummary
	SubscriberCount  int  `json:"subscriberCount"`
	IsSubscribedBack bool `json:"isSubscribedBack"`
}

// SubscriberList is the full subscriber view for a channel.
type SubscriberList struct {
	TotalSubscribers int               `json:"totalSubscribers"`
	Subscribers      []SubscriberEntry `json:"subscribers"`
}

// LatestVideo is the most recently created video of a subscribed channel.
type LatestVideo struct {
	VideoID      string    `json:"videoId"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SubscribedChannelEntry is one channel a user subscribes to. LatestVideo is
// nil when the channel has no videos.
type SubscribedChannelEntry struct {
	OwnerSummary
	LatestVideo *LatestVideo `json:"latestVideo,omitempty"`
}

// SubscribedChannelList is the full subscribed-channels view for a user.
type SubscribedChannelList struct {
	TotalSubscribedChannels int                      `json:"totalSubscribedChannels"`
	Channels                []SubscribedChannelEntry `json:"channels"`
}

// LikedVideoEntry is one video the viewer has liked, newest like first.
type LikedVideoEntry struct {
	VideoID      string       `json:"videoId"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	Duration     float64      `json:"duration"`
	Views        int64        `json:"views"`
	CreatedAt    time.Time    `json:"createdAt"`
	LikedAt      time.Time    `json:"likedAt"`
	Owner        OwnerSummary `json:"owner"`
}

// VideoListItem is one row in the published-video listing.
type VideoListItem struct {
	VideoID      string       `json:"videoId"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	Duration     float64      `json:"duration"`
	Views        int64        `json:"views"`
	CreatedAt    time.Time    `json:"createdAt"`
	Owner        OwnerSummary `json:"owner"`
}

// SortField selects the ordering column for video listings.
type SortField string

const (
	SortByViews     SortField = "views"
	SortByCreatedAt SortField = "createdAt"
	SortByDuration  SortField = "duration"
)

// Valid reports whether the sort field is one of the supported columns.
func (f SortField) Valid() bool {
	switch f {
	case SortByViews, SortByCreatedAt, SortByDuration:
		return true
	}
	return false
}

// VideoFilter captures the listing parameters after normalisation. Offset and
// Limit describe the window over the filtered, sorted result set.
type VideoFilter struct {
	Query     string
	OwnerID   string
	Sort      SortField
	Ascending bool
	Offset    int
	Limit     int
}

// VideoListOptions are the caller-facing listing parameters before
// normalisation.
type VideoListOptions struct {
	Query     string
	OwnerID   string
	Sort      SortField
	Ascending bool
	Page      int
	Limit     int
}
