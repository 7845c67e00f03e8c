package models

import "time"

// Asset references a file held by the object storage collaborator. ProviderID
// is the opaque key needed to delete or replace the object later.
type Asset struct {
	URL        string
	ProviderID string
}

// User represents an account within the VidTube platform. A user doubles as a
// channel when others subscribe to them.
type User struct {
	ID          string
	Username    string
	Email       string
	DisplayName string
	Avatar      Asset
	CoverImage  Asset
	Password    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Video is an uploaded video together with its thumbnail and counters. Views
// is the only stored counter; like and subscriber totals are derived at read
// time.
type Video struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	File        Asset
	Thumbnail   Asset
	Duration    float64
	Views       int64
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment is a user comment on a video.
type Comment struct {
	ID        string
	OwnerID   string
	VideoID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tweet is a short text post owned by a user.
type Tweet struct {
	ID        string
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LikeTargetKind discriminates what a like points at.
type LikeTargetKind string

const (
	LikeTargetVideo   LikeTargetKind = "video"
	LikeTargetComment LikeTargetKind = "comment"
	LikeTargetTweet   LikeTargetKind = "tweet"
)

// Valid reports whether the kind is one of the supported like targets.
func (k LikeTargetKind) Valid() bool {
	switch k {
	case LikeTargetVideo, LikeTargetComment, LikeTargetTweet:
		return true
	}
	return false
}

// LikeTarget is the tagged reference a Like points at: exactly one entity of
// the given kind.
type LikeTarget struct {
	Kind LikeTargetKind
	ID   string
}

// Like is an edge from a user to a video, comment or tweet. At most one like
// exists per (LikedBy, Target) pair.
type Like struct {
	ID        string
	LikedBy   string
	Target    LikeTarget
	CreatedAt time.Time
}

// Subscription is an edge from a subscriber to a channel. At most one
// subscription exists per (SubscriberID, ChannelID) pair.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// Playlist is an ordered collection of video references owned by a user.
type Playlist struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
